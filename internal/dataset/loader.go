package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"

	"github.com/chandrakumar-sys/bank-support-bot/internal/config"
)

// Loader fetches the loan datasets (Excel workbooks) from S3.
type Loader struct {
	s3  *s3.Client
	cfg config.DatasetConfig
}

func NewLoader(ctx context.Context, cfg config.DatasetConfig) (*Loader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &Loader{s3: s3.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Load fetches and indexes the customers, fees and loans workbooks.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	customers, err := l.fetchRows(ctx, l.cfg.CustomersKey)
	if err != nil {
		return nil, err
	}
	fees, err := l.fetchRows(ctx, l.cfg.FeesKey)
	if err != nil {
		return nil, err
	}
	loans, err := l.fetchRows(ctx, l.cfg.LoansKey)
	if err != nil {
		return nil, err
	}
	return NewTables(customers, fees, loans), nil
}

func (l *Loader) fetchRows(ctx context.Context, key string) ([][]string, error) {
	obj, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", l.cfg.Bucket, key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", key, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", key)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", key, err)
	}
	return rows, nil
}
