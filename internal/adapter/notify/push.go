package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/nordtolk/booking/internal/domain"
)

const pushTimeout = 15 * time.Second

// PushGateway implements PushSender against the mobile push relay. Delayed
// batches are flagged so the relay holds them until quiet hours end.
type PushGateway struct {
	url    string
	key    string
	client *http.Client
}

// NewPushGateway creates a PushGateway for the given relay endpoint.
func NewPushGateway(url, key string) *PushGateway {
	return &PushGateway{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: pushTimeout},
	}
}

type pushRequest struct {
	Users   []int64            `json:"users"`
	JobID   int64              `json:"job_id"`
	Delayed bool               `json:"delay_until_morning"`
	Data    domain.PushPayload `json:"data"`
}

func (g *PushGateway) Send(ctx context.Context, userIDs []int64, jobID int64, payload domain.PushPayload, delayed bool) error {
	body, err := json.Marshal(pushRequest{Users: userIDs, JobID: jobID, Delayed: delayed, Data: payload})
	if err != nil {
		return errors.Wrap(err, "failed to encode push request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	if g.key != "" {
		req.Header.Set("Authorization", "Bearer "+g.key)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "push gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("push gateway returned %s", resp.Status)
	}
	return nil
}
