package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// ReportExporter persists a finished job's report and returns a URI callers
// can hand to the user
type ReportExporter interface {
	Export(ctx context.Context, job *models.Job) (string, error)
}

// moduleTitles maps module kinds to report section headings
var moduleTitles = map[models.ModuleKind]string{
	models.ModuleMetadata:          "Channel Snapshot",
	models.ModuleTitleEngine:       "Title Engine",
	models.ModuleCTRAnalysis:       "CTR Analysis",
	models.ModuleMultiPlatform:     "Multi-Platform Strategy",
	models.ModuleCopyrightScan:     "Copyright Scan",
	models.ModuleFairUse:           "Fair Use Assessment",
	models.ModuleTrendIntelligence: "Trend Intelligence",
}

// RenderReport renders a terminal job into a Markdown document. Failed
// modules appear as a short failure note so the reader sees what was
// attempted, not just what succeeded.
func RenderReport(job *models.Job) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Channel Analysis Report: %s\n\n", job.Channel)
	fmt.Fprintf(&b, "- Job: `%s`\n", job.ID)
	fmt.Fprintf(&b, "- Status: %s\n", job.Status)
	fmt.Fprintf(&b, "- Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))

	renderSection(&b, job, models.ModuleMetadata)
	for _, kind := range job.RequestedModules {
		renderSection(&b, job, kind)
	}

	return b.Bytes()
}

func renderSection(b *bytes.Buffer, job *models.Job, kind models.ModuleKind) {
	slot, ok := job.Slots[kind]
	if !ok {
		return
	}

	title := moduleTitles[kind]
	if title == "" {
		title = string(kind)
	}
	fmt.Fprintf(b, "## %s\n\n", title)

	if slot.State != models.SlotSucceeded {
		fmt.Fprintf(b, "_This module did not complete (%s: %s)._\n\n", slot.ErrorKind, slot.ErrorMessage)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, slot.Payload, "", "  "); err != nil {
		pretty.Write(slot.Payload)
	}
	fmt.Fprintf(b, "```json\n%s\n```\n\n", pretty.String())
}

// S3Exporter uploads reports to an S3 bucket
type S3Exporter struct {
	client *s3.Client
	bucket string
}

// NewS3Exporter creates an exporter against the given bucket using the
// default AWS credential chain
func NewS3Exporter(ctx context.Context, region, bucket string) (*S3Exporter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Exporter{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Export renders the report and uploads it under reports/<jobID>.md
func (e *S3Exporter) Export(ctx context.Context, job *models.Job) (string, error) {
	key := fmt.Sprintf("reports/%s.md", job.ID)
	body := RenderReport(job)

	contentType := "text/markdown"
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &e.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", e.bucket, key), nil
}

// LocalExporter writes reports to a directory on disk. Used when no report
// bucket is configured.
type LocalExporter struct {
	dir string
}

// NewLocalExporter creates an exporter rooted at dir
func NewLocalExporter(dir string) *LocalExporter {
	return &LocalExporter{dir: dir}
}

// Export renders the report and writes <dir>/<jobID>.md
func (e *LocalExporter) Export(_ context.Context, job *models.Job) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(e.dir, job.ID+".md")
	if err := os.WriteFile(path, RenderReport(job), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return "file://" + strings.TrimPrefix(path, "./"), nil
}
