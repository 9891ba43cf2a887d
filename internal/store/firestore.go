package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/logger"
)

const (
	eventsCollection = "eventos"

	// Firestore caps a batch at 500 operations; staying under leaves room
	// for the odd extra write in the same batch.
	maxBatchOps = 450
)

// Record provenance values. Only scraper-owned documents are ever replaced;
// manually curated ones stay untouched.
const (
	SourceScraper = "scraper"
	SourceManual  = "manual"
)

// Sink publishes normalized records to the app's Firestore collection.
type Sink struct {
	client *firestore.Client
	log    *logger.Logger
}

// NewSink connects to Firestore. Credentials come in as client options so
// the caller decides between a service-account file and ambient credentials.
func NewSink(ctx context.Context, projectID string, log *logger.Logger, opts ...option.ClientOption) (*Sink, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project ID is required")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to firestore: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Sink{client: client, log: log}, nil
}

// Close releases the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// ReplaceScraped deletes every scraper-owned document and inserts the new
// records, both in batches under the Firestore operation cap. Documents
// whose source is not "scraper" survive the replacement.
func (s *Sink) ReplaceScraped(ctx context.Context, records []event.Record) error {
	deleted, err := s.deleteScraped(ctx)
	if err != nil {
		return err
	}
	s.log.Info("scraper documents cleared", logger.Fields{"deleted": deleted})

	if err := commitChunks(ctx, chunkRecords(records, maxBatchOps), s.writeChunk); err != nil {
		return err
	}

	s.log.Info("records published", logger.Fields{
		"collection": eventsCollection,
		"count":      len(records),
	})
	return nil
}

// commitChunks commits batches in order, stopping at the first failure.
// Already-committed batches stay committed; the error surfaces to the caller.
func commitChunks(ctx context.Context, chunks [][]event.Record, commit func(context.Context, []event.Record) error) error {
	for i, chunk := range chunks {
		if err := commit(ctx, chunk); err != nil {
			return fmt.Errorf("committing batch %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// writeChunk queues one batch of document sets and blocks until every write
// reports back.
func (s *Sink) writeChunk(ctx context.Context, chunk []event.Record) error {
	collection := s.client.Collection(eventsCollection)
	batch := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(chunk))
	for _, r := range chunk {
		job, err := batch.Set(collection.Doc(DocumentID(r)), recordData(r))
		if err != nil {
			return fmt.Errorf("queueing record %s: %w", r.Code, err)
		}
		jobs = append(jobs, job)
	}
	batch.End()
	return awaitJobs(jobs)
}

// awaitJobs waits on every queued bulk write and returns the first failure.
func awaitJobs(jobs []*firestore.BulkWriterJob) error {
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) deleteScraped(ctx context.Context) (int, error) {
	query := s.client.Collection(eventsCollection).Where("source", "==", SourceScraper)
	iter := query.Documents(ctx)
	defer iter.Stop()

	deleted := 0
	batch := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, fmt.Errorf("listing scraper documents: %w", err)
		}

		job, err := batch.Delete(doc.Ref)
		if err != nil {
			return deleted, fmt.Errorf("queueing delete: %w", err)
		}
		jobs = append(jobs, job)
		deleted++
		if len(jobs) >= maxBatchOps {
			batch.End()
			if err := awaitJobs(jobs); err != nil {
				return deleted, fmt.Errorf("deleting scraper documents: %w", err)
			}
			batch = s.client.BulkWriter(ctx)
			jobs = jobs[:0]
		}
	}
	batch.End()
	if err := awaitJobs(jobs); err != nil {
		return deleted, fmt.Errorf("deleting scraper documents: %w", err)
	}
	return deleted, nil
}

var docIDSanitizeRe = regexp.MustCompile(`[\s/]+`)

// DocumentID builds the deterministic document ID venue_date_code, with
// whitespace and slashes collapsed to underscores. Re-publishing the same
// event overwrites its document instead of duplicating it.
func DocumentID(r event.Record) string {
	code := r.Code
	if code == "" {
		code = strings.ToLower(docIDSanitizeRe.ReplaceAllString(r.Name, "_"))
	}
	id := fmt.Sprintf("%s_%s_%s", r.Venue.Name, r.Date, code)
	return docIDSanitizeRe.ReplaceAllString(strings.TrimSpace(id), "_")
}

// recordData renders a record as the Firestore document, stamping
// lastUpdated on the server.
func recordData(r event.Record) map[string]any {
	return map[string]any{
		"name":        r.Name,
		"description": r.Description,
		"date":        r.Date,
		"startTime":   r.StartTime,
		"endTime":     r.EndTime,
		"imageUrl":    r.ImageURL,
		"detailUrl":   r.DetailURL,
		"code":        r.Code,
		"tickets":     r.Tickets,
		"tags":        r.Tags,
		"minAge":      r.MinAge,
		"venue":       r.Venue,
		"source":      SourceScraper,
		"lastUpdated": firestore.ServerTimestamp,
	}
}

func chunkRecords(records []event.Record, size int) [][]event.Record {
	var chunks [][]event.Record
	for len(records) > size {
		chunks = append(chunks, records[:size])
		records = records[size:]
	}
	if len(records) > 0 {
		chunks = append(chunks, records)
	}
	return chunks
}
