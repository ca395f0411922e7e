package sheetview

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// client is the shared, read-only handle every object of a Collection tree
// talks to the adapter through.
type client struct {
	adapter Adapter
	log     zerolog.Logger
}

// New creates a new Collection backed by the given adapter and configuration
func New(adapter Adapter, config *Config) *Collection {
	if config == nil {
		config = DefaultConfig()
	}
	return newCollection(&client{
		adapter: adapter,
		log:     config.Logger,
	})
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemoteOperationFailed, op, err)
}

func (c *client) listDocuments(ctx context.Context) ([]string, error) {
	c.log.Debug().Msg("Listing documents")
	ids, err := c.adapter.ListDocuments(ctx)
	if err != nil {
		return nil, remoteErr("list documents", err)
	}
	return ids, nil
}

func (c *client) getDocument(ctx context.Context, id string) (*Document, error) {
	c.log.Debug().Str("document_id", id).Msg("Fetching document metadata")
	doc, err := c.adapter.GetDocument(ctx, id)
	if err != nil {
		return nil, remoteErr("get document", err)
	}
	return doc, nil
}

func (c *client) mutate(ctx context.Context, id string, m Mutation) (*Document, error) {
	c.log.Debug().
		Str("document_id", id).
		Int("mutation", int(m.Type)).
		Int64("sheet_id", m.Sheet.SheetID).
		Str("fields", m.Fields).
		Msg("Applying document mutation")
	doc, err := c.adapter.BatchUpdateDocument(ctx, id, []Mutation{m})
	if err != nil {
		return nil, remoteErr("batch update document", err)
	}
	return doc, nil
}

func (c *client) getValues(ctx context.Context, id, rangeA1 string) ([][]string, error) {
	c.log.Debug().Str("document_id", id).Str("range", rangeA1).Msg("Fetching cells")
	values, err := c.adapter.GetValues(ctx, id, rangeA1, ReadOptions{
		ValueRenderOption:    RenderFormattedValue,
		DateTimeRenderOption: RenderFormattedString,
	})
	if err != nil {
		return nil, remoteErr("get values", err)
	}
	return values, nil
}

func (c *client) writeValues(ctx context.Context, id string, data []ValueRange) error {
	c.log.Debug().Str("document_id", id).Int("ranges", len(data)).Msg("Committing queued writes")
	if err := c.adapter.BatchWriteValues(ctx, id, data, InputUserEntered); err != nil {
		return remoteErr("batch write values", err)
	}
	return nil
}

func (c *client) createDocument(ctx context.Context, title string) (string, error) {
	c.log.Debug().Str("title", title).Msg("Creating document")
	id, err := c.adapter.CreateDocument(ctx, title)
	if err != nil {
		return "", remoteErr("create document", err)
	}
	return id, nil
}

func (c *client) lastModified(ctx context.Context, id string) (time.Time, error) {
	t, err := c.adapter.LastModified(ctx, id)
	if err != nil {
		return time.Time{}, remoteErr("last modified", err)
	}
	return t, nil
}
