package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	pkgch "CrediScan/pkg/clickhouse"
	applogger "CrediScan/pkg/logger"
)

const analysisColumns = "id, analyzed_at, url, text_hash, risk_score, credibility_score, rule_based_risk, verdict_level, model_available, model_prediction, model_confidence, relevance_score, is_news_related, word_count"

// ClickHouseAnalysisStore keeps analysis summaries in a MergeTree table.
type ClickHouseAnalysisStore struct {
	db    *sql.DB
	ch    *pkgch.Client
	table string
	l     *applogger.Logger
}

var _ domrepo.AnalysisStore = (*ClickHouseAnalysisStore)(nil)

// NewClickHouseAnalysisStore uses the client's database for the analyses table.
func NewClickHouseAnalysisStore(ch *pkgch.Client, l *applogger.Logger) *ClickHouseAnalysisStore {
	database := ch.Database()
	if database == "" {
		database = "default"
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseAnalysisStore{db: ch.DB(), ch: ch, table: database + ".analyses", l: l}
}

// Init creates the database and table when missing.
func (s *ClickHouseAnalysisStore) Init(ctx context.Context) error {
	db := strings.SplitN(s.table, ".", 2)[0]
	return s.ch.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id String,
            analyzed_at DateTime64(3, 'UTC'),
            url String,
            text_hash String,
            risk_score Float64,
            credibility_score Float64,
            rule_based_risk Float64,
            verdict_level LowCardinality(String),
            model_available UInt8,
            model_prediction LowCardinality(String),
            model_confidence Float64,
            relevance_score Float64,
            is_news_related UInt8,
            word_count UInt32
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(analyzed_at)
        ORDER BY (analyzed_at, id)`, s.table),
	})
}

func (s *ClickHouseAnalysisStore) Store(ctx context.Context, r *models.AnalysisResult) error {
	return s.StoreBatch(ctx, []*models.AnalysisResult{r})
}

// StoreBatch appends rows through one prepared batch; rows without an ID are skipped.
func (s *ClickHouseAnalysisStore) StoreBatch(ctx context.Context, results []*models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		if r == nil || r.ID == "" {
			continue
		}
		rows = append(rows, analysisRow(r))
	}
	if len(rows) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (%s)", s.table, analysisColumns)
	if err := s.ch.InsertBatch(ctx, q, rows); err != nil {
		s.l.Error("clickhouse insert analyses", applogger.Int("rows", len(rows)), applogger.Error(err))
		return fmt.Errorf("insert analyses: %w", err)
	}
	return nil
}

func analysisRow(r *models.AnalysisResult) []interface{} {
	return []interface{}{
		r.ID,
		r.AnalyzedAt.UTC(),
		r.URL,
		r.TextHash,
		r.RiskScore,
		r.CredibilityScore,
		r.RuleBasedRisk,
		string(r.VerdictLevel),
		boolToUInt8(r.AIPrediction.Available),
		r.AIPrediction.Prediction,
		r.AIPrediction.Confidence,
		r.NewsRelevance.RelevanceScore,
		boolToUInt8(r.NewsRelevance.IsNewsRelated),
		uint32(r.LinguisticFeatures.WordCount),
	}
}

// Recent returns the newest analyses at or after since, newest first.
func (s *ClickHouseAnalysisStore) Recent(ctx context.Context, since time.Time, limit int) ([]models.HistoryEntry, error) {
	q := fmt.Sprintf(`
        SELECT id, analyzed_at, url, text_hash, risk_score, credibility_score,
               verdict_level, model_available, relevance_score, word_count
        FROM %s FINAL
        WHERE analyzed_at >= ?
        ORDER BY analyzed_at DESC
        LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			e         models.HistoryEntry
			at        time.Time
			level     string
			available uint8
			words     uint32
		)
		if err := rows.Scan(&e.ID, &at, &e.URL, &e.TextHash, &e.RiskScore, &e.CredibilityScore,
			&level, &available, &e.RelevanceScore, &words); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		e.AnalyzedAt = at.UTC().Format(time.RFC3339)
		e.VerdictLevel = models.VerdictLevel(level)
		e.ModelAvailable = available == 1
		e.WordCount = int(words)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *ClickHouseAnalysisStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close is a no-op; the client is closed by its owner.
func (s *ClickHouseAnalysisStore) Close() error {
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
