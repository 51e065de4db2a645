package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/utils"
)

const (
	MAX_BATCH_SIZE  = 25
	MAX_BATCH_RETRY = 3
	INITIAL_BACKOFF = 500 * time.Millisecond
	RESULT_TTL      = 30 * 24 * time.Hour
	DEFAULT_TABLE   = "BrandSentimentResults"
)

// BatchWriter is the slice of the DynamoDB API the sink needs
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// SentimentTable writes every scored item of an analysis to a DynamoDB table
// keyed by brand_key + item_id.
type SentimentTable struct {
	client  BatchWriter
	table   string
	backoff time.Duration
	now     func() time.Time
}

func NewSentimentTable(client BatchWriter, table string) *SentimentTable {
	if table == "" {
		table = DEFAULT_TABLE
	}
	return &SentimentTable{client: client, table: table, backoff: INITIAL_BACKOFF, now: time.Now}
}

func (s *SentimentTable) Name() string { return "dynamodb" }

func (s *SentimentTable) Publish(ctx context.Context, _, brandKey string, items []models.ScoredItem, _ models.Insights) error {
	analyzedAt := s.now()
	buf := utils.NewBatchBuffer[types.WriteRequest](MAX_BATCH_SIZE)

	for _, it := range items {
		av, err := ResultToDynamoDBItem(brandKey, it, analyzedAt)
		if err != nil {
			return err
		}
		if buf.Add(types.WriteRequest{PutRequest: &types.PutRequest{Item: av}}) {
			buf.LogBatchProcessing(s.table)
			if err := s.writeBatch(ctx, buf.GetAndClear()); err != nil {
				return err
			}
		}
	}
	if buf.HasData() {
		if err := s.writeBatch(ctx, buf.GetAndClear()); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored sentiment results",
		slog.String("brand_key", brandKey),
		slog.Int("count", len(items)))
	return nil
}

func (s *SentimentTable) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.table: requests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write sentiment results: %w", err)
	}

	retryCount := 0
	backoff := s.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < MAX_BATCH_RETRY {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[s.table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d sentiment items not written after %d retries", remaining, MAX_BATCH_RETRY)
	}
	return nil
}

type resultRecord struct {
	BrandKey         string   `dynamodbav:"brand_key"`
	ItemID           string   `dynamodbav:"item_id"`
	Source           string   `dynamodbav:"source"`
	Author           string   `dynamodbav:"author,omitempty"`
	Text             string   `dynamodbav:"text,omitempty"`
	URL              string   `dynamodbav:"url,omitempty"`
	CreatedAt        string   `dynamodbav:"created_at,omitempty"`
	SentimentLabel   string   `dynamodbav:"sentiment_label"`
	SentimentScore   float64  `dynamodbav:"sentiment_score"`
	SentimentNumeric int      `dynamodbav:"sentiment_numeric"`
	Polarity         float64  `dynamodbav:"polarity"`
	Subjectivity     float64  `dynamodbav:"subjectivity"`
	LexiconLabel     string   `dynamodbav:"lexicon_label"`
	Keywords         []string `dynamodbav:"keywords,omitempty"`
	Engagement       int      `dynamodbav:"engagement"`
	AnalyzedAt       int64    `dynamodbav:"analyzed_at"`
}

// ResultToDynamoDBItem maps a scored item to its table row. The ttl attribute
// expires rows RESULT_TTL after the analysis.
func ResultToDynamoDBItem(brandKey string, it models.ScoredItem, analyzedAt time.Time) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(resultRecord{
		BrandKey:         brandKey,
		ItemID:           it.ID,
		Source:           string(it.Source),
		Author:           it.Author,
		Text:             it.Text,
		URL:              it.URL,
		CreatedAt:        it.CreatedAt,
		SentimentLabel:   it.SentimentLabel,
		SentimentScore:   it.SentimentScore,
		SentimentNumeric: it.SentimentNumeric,
		Polarity:         it.Polarity,
		Subjectivity:     it.Subjectivity,
		LexiconLabel:     it.LexiconLabel,
		Keywords:         it.Keywords,
		Engagement:       it.Engagement,
		AnalyzedAt:       analyzedAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] marshal item %s: %w", it.ID, err)
	}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(analyzedAt.Add(RESULT_TTL).Unix(), 10)}
	return item, nil
}
