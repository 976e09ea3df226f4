package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const courseColumns = `course_id, COALESCE(course_name, ''), COALESCE(department, ''),
	course_level, COALESCE(description, ''), liked, easy, useful, rating_num`

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	c := &Course{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+courseColumns+`
		FROM course WHERE course_id = $1`, id,
	).Scan(
		&c.ID, &c.Name, &c.Department, &c.Level, &c.Description,
		&c.Liked, &c.Easy, &c.Useful, &c.RatingCount,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) CourseExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM course WHERE TRIM(course_id) = $1 LIMIT 1`, id,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err != pgx.ErrNoRows {
		return false, err
	}
	// A course may appear only as an edge endpoint without a catalog row.
	err = s.pool.QueryRow(ctx, `
		SELECT 1 FROM course_prereq
		WHERE TRIM(course_id) = $1 OR TRIM(prereq_course_id) = $1
		LIMIT 1`, id,
	).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) ListOfferings(ctx context.Context, id string, limit int) ([]Offering, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT term FROM offering
		WHERE course_id = $1
		ORDER BY term DESC
		LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.Term); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPrereqGroups(ctx context.Context, id string) ([]PrereqGroup, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT prerequisite_group, prereq_course_id, min_grade
		FROM course_prereq
		WHERE course_id = $1
		ORDER BY prerequisite_group, prereq_course_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byGroup := map[int]*PrereqGroup{}
	var order []int
	for rows.Next() {
		var grp int
		var pc PrereqCourse
		if err := rows.Scan(&grp, &pc.CourseID, &pc.MinGrade); err != nil {
			return nil, err
		}
		g, ok := byGroup[grp]
		if !ok {
			g = &PrereqGroup{Group: grp}
			byGroup[grp] = g
			order = append(order, grp)
		}
		g.Courses = append(g.Courses, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive ordered by group number, so order is already sorted.
	out := make([]PrereqGroup, 0, len(order))
	for _, grp := range order {
		g := byGroup[grp]
		g.Type = "AND"
		if len(g.Courses) > 1 {
			g.Type = "OR"
		}
		out = append(out, *g)
	}
	return out, nil
}

func (s *PostgresStore) GetDependents(ctx context.Context, id string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT course_id FROM course_prereq
		WHERE prereq_course_id = $1
		ORDER BY course_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPrereqSource(ctx context.Context, id string) (*PrereqSource, error) {
	src := &PrereqSource{CourseID: id, Logic: map[string]interface{}{}}
	var logicJSON string
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(raw_text, ''), COALESCE(logic_json, '{}')
		FROM course_prereq_text WHERE course_id = $1`, id,
	).Scan(&src.RawText, &logicJSON)
	if err == pgx.ErrNoRows {
		return src, nil
	}
	if err != nil {
		return nil, err
	}
	// Malformed stored JSON degrades to an empty object, not an error.
	_ = json.Unmarshal([]byte(logicJSON), &src.Logic)
	return src, nil
}

func (s *PostgresStore) GetMetricsMap(ctx context.Context, ids []string) (map[string]*CourseMetrics, error) {
	out := make(map[string]*CourseMetrics)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT course_id, liked, easy, useful, rating_num
		FROM course WHERE course_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid string
		m := &CourseMetrics{}
		if err := rows.Scan(&cid, &m.Liked, &m.Easy, &m.Useful, &m.RatingCount); err != nil {
			return nil, err
		}
		out[cid] = m
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetAggregates(ctx context.Context) (*AggregateMetrics, error) {
	agg := &AggregateMetrics{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY liked), 0),
			COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY easy), 0),
			COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY useful), 0),
			COALESCE(MIN(liked), 0),
			COALESCE(MIN(easy), 0),
			COALESCE(MIN(useful), 0)
		FROM course`,
	).Scan(
		&agg.Median.Liked, &agg.Median.Easy, &agg.Median.Useful,
		&agg.Min.Liked, &agg.Min.Easy, &agg.Min.Useful,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}
	return agg, nil
}

func (s *PostgresStore) SuggestCourses(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	pfx := q + "%"
	anylike := "%" + q + "%"

	// Rank: prefix match on code > contains in code > contains in name.
	rows, err := s.pool.Query(ctx, `
		SELECT course_id, COALESCE(course_name, ''),
			CASE WHEN UPPER(course_id) LIKE $1 THEN 3
			     WHEN UPPER(course_id) LIKE $2 THEN 2
			     WHEN UPPER(course_name) LIKE $2 THEN 1
			     ELSE 0 END AS rank1,
			POSITION($3 IN UPPER(course_id)) AS pos
		FROM course
		WHERE UPPER(course_id) LIKE $2 OR UPPER(course_name) LIKE $2
		ORDER BY rank1 DESC, pos, course_id
		LIMIT $4`, pfx, anylike, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var sug Suggestion
		var rank, pos int
		if err := rows.Scan(&sug.CourseID, &sug.CourseName, &rank, &pos); err != nil {
			return nil, err
		}
		out = append(out, sug)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*CorpusStats, error) {
	stats := &CorpusStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM course),
			(SELECT COUNT(*) FROM course WHERE liked IS NOT NULL OR easy IS NOT NULL OR useful IS NOT NULL),
			(SELECT COUNT(*) FROM course_prereq),
			(SELECT COUNT(*) FROM offering)`,
	).Scan(&stats.Courses, &stats.RatedCourses, &stats.PrereqEdges, &stats.Offerings)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
