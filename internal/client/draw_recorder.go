package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/pkg/api"
	"github.com/questx-lab/luckydraw/pkg/pubsub"
)

const SignatureHeader = "X-Luckydraw-Signature"

// DrawRecorder delivers a draw record to the remote recording endpoint.
type DrawRecorder interface {
	Record(ctx context.Context, record draw.DrawRecord) error
}

type httpDrawRecorder struct {
	generator api.Generator
	token     string
	secret    string
}

// NewHTTPDrawRecorder posts records as json with a bearer token. The body is
// signed with secret when it is not empty.
func NewHTTPDrawRecorder(generator api.Generator, token, secret string) *httpDrawRecorder {
	return &httpDrawRecorder{generator: generator, token: token, secret: secret}
}

type recordResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func (r *httpDrawRecorder) Record(ctx context.Context, record draw.DrawRecord) error {
	opts := []api.Opt{api.OAuth2("Bearer", r.token)}
	if r.secret != "" {
		opts = append(opts, api.Signature(SignatureHeader, r.secret))
	}

	resp, err := r.generator.New("").Body(api.NewJSON(record)).POST(ctx, opts...)
	if err != nil {
		return err
	}

	if resp.Code < 200 || resp.Code >= 300 {
		return fmt.Errorf("unexpected status code %d", resp.Code)
	}

	body, err := resp.JSON()
	if err != nil {
		return err
	}

	var result recordResponse
	if err := body.Decode(&result); err != nil {
		return err
	}

	if result.Code != 0 {
		return fmt.Errorf("recorder rejected the record: %d %s", result.Code, result.Error)
	}

	return nil
}

type kafkaDrawRecorder struct {
	publisher pubsub.Publisher
	topic     string
}

// NewKafkaDrawRecorder publishes records keyed by user id, so records of a user
// keep their order within a partition.
func NewKafkaDrawRecorder(publisher pubsub.Publisher, topic string) *kafkaDrawRecorder {
	return &kafkaDrawRecorder{publisher: publisher, topic: topic}
}

func (r *kafkaDrawRecorder) Record(ctx context.Context, record draw.DrawRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return r.publisher.Publish(ctx, r.topic, &pubsub.Pack{Key: []byte(record.UserID), Msg: b})
}
