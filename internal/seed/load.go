// ABOUTME: Writes generated records through the REST API.
// ABOUTME: Records pass the same transform and before-create hook as console submissions.

package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/schema"
)

// Insert creates each record at cfg's endpoint and returns how many were
// created. A record the before-create hook vetoes is skipped.
func Insert(ctx context.Context, client httpclient.Client, cfg *schema.EntityConfig, records []schema.Record) (int, error) {
	created := 0
	for i, rec := range records {
		payload := rec.Clone()
		if cfg.TransformForAPI != nil {
			payload = cfg.TransformForAPI(payload)
		}
		if cfg.Hooks.BeforeCreate != nil {
			payload = cfg.Hooks.BeforeCreate(payload)
			if payload == nil {
				log.Printf("seed %s: record %d vetoed", cfg.Key(), i)
				continue
			}
		}
		if _, err := client.Post(ctx, cfg.APIEndpoint, payload); err != nil {
			return created, fmt.Errorf("seed %s record %d: %w", cfg.Key(), i, err)
		}
		created++
	}
	return created, nil
}
