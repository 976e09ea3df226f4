// seed_courses.go — standalone script to load a course-corpus JSON dump
// (courses, prerequisite edges, offerings) into the Compass database.
//
// Usage:
//
//	go run scripts/seed_courses.go -dump /path/to/corpus.json -db postgres://localhost/compass
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
)

type courseRow struct {
	CourseID    string   `json:"course_id"`
	CourseName  string   `json:"course_name"`
	Department  string   `json:"department"`
	CourseLevel *int     `json:"course_level"`
	Description string   `json:"description"`
	Liked       *float64 `json:"liked"`
	Easy        *float64 `json:"easy"`
	Useful      *float64 `json:"useful"`
	RatingNum   *int     `json:"rating_num"`
}

type prereqRow struct {
	CourseID       string `json:"course_id"`
	Group          int    `json:"prerequisite_group"`
	PrereqCourseID string `json:"prereq_course_id"`
	MinGrade       *int   `json:"min_grade"`
}

type offeringRow struct {
	CourseID string `json:"course_id"`
	Term     string `json:"term"`
}

type corpusDump struct {
	Courses   []courseRow   `json:"courses"`
	Prereqs   []prereqRow   `json:"prereqs"`
	Offerings []offeringRow `json:"offerings"`
}

func main() {
	dumpPath := flag.String("dump", "corpus.json", "path to corpus JSON dump")
	dbURL := flag.String("db", os.Getenv("COMPASS_DATABASE_URL"), "database URL")
	truncate := flag.Bool("truncate", false, "truncate existing corpus tables first")
	flag.Parse()

	data, err := os.ReadFile(*dumpPath)
	if err != nil {
		log.Fatalf("read dump: %v", err)
	}
	var dump corpusDump
	if err := json.Unmarshal(data, &dump); err != nil {
		log.Fatalf("parse dump: %v", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close(ctx)

	if *truncate {
		if _, err := conn.Exec(ctx, `TRUNCATE course, course_prereq, offering`); err != nil {
			log.Fatalf("truncate: %v", err)
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range dump.Courses {
		_, err := tx.Exec(ctx, `
			INSERT INTO course (course_id, course_name, department, course_level, description,
				liked, easy, useful, rating_num)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (course_id) DO UPDATE SET
				course_name = EXCLUDED.course_name,
				department = EXCLUDED.department,
				course_level = EXCLUDED.course_level,
				description = EXCLUDED.description,
				liked = EXCLUDED.liked,
				easy = EXCLUDED.easy,
				useful = EXCLUDED.useful,
				rating_num = EXCLUDED.rating_num`,
			c.CourseID, c.CourseName, c.Department, c.CourseLevel, c.Description,
			c.Liked, c.Easy, c.Useful, c.RatingNum)
		if err != nil {
			log.Fatalf("insert course %s: %v", c.CourseID, err)
		}
	}

	for _, p := range dump.Prereqs {
		_, err := tx.Exec(ctx, `
			INSERT INTO course_prereq (course_id, prerequisite_group, prereq_course_id, min_grade)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			p.CourseID, p.Group, p.PrereqCourseID, p.MinGrade)
		if err != nil {
			log.Fatalf("insert prereq %s -> %s: %v", p.CourseID, p.PrereqCourseID, err)
		}
	}

	for _, o := range dump.Offerings {
		_, err := tx.Exec(ctx, `
			INSERT INTO offering (course_id, term)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			o.CourseID, o.Term)
		if err != nil {
			log.Fatalf("insert offering %s %s: %v", o.CourseID, o.Term, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Printf("seeded %d courses, %d prereq edges, %d offerings\n",
		len(dump.Courses), len(dump.Prereqs), len(dump.Offerings))
}
