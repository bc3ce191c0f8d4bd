package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

type fakePublisher struct {
	published []models.PositionMessage
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, msg models.PositionMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func fptr(v float64) *float64 { return &v }

func TestAccept(t *testing.T) {
	pub := &fakePublisher{}
	s := NewService(pub, logger.Discard())
	ctx := context.Background()

	if err := s.Accept(ctx, types.SourceSBS, models.PositionMessage{IcaoAddress: " 4ca7b5", Latitude: fptr(53.4)}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].IcaoAddress != "4CA7B5" {
		t.Fatalf("published %+v", pub.published)
	}

	err := s.Accept(ctx, types.SourceSBS, models.PositionMessage{IcaoAddress: "4CA7B5"})
	if !errors.Is(err, types.ErrNothingToPublish) {
		t.Fatalf("address only: err = %v", err)
	}

	for _, bad := range []models.PositionMessage{
		{IcaoAddress: "XYZ", Latitude: fptr(1)},
		{IcaoAddress: "4CA7B5", Latitude: fptr(91)},
		{IcaoAddress: "4CA7B5", Heading: fptr(360)},
	} {
		if err := s.Accept(ctx, types.SourceFeeder, bad); !errors.Is(err, types.ErrInvalidMessage) {
			t.Fatalf("%+v: err = %v", bad, err)
		}
	}
	if len(pub.published) != 1 {
		t.Fatal("invalid messages must not be published")
	}
}

func TestAcceptBatch(t *testing.T) {
	pub := &fakePublisher{}
	s := NewService(pub, logger.Discard())

	res, err := s.AcceptBatch(context.Background(), types.SourceFeeder, []models.PositionMessage{
		{IcaoAddress: "4CA7B5", Latitude: fptr(1)},
		{IcaoAddress: "4CA7B5"},
		{IcaoAddress: "3C6586", Heading: fptr(90)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted != 2 || res.Dropped != 1 || res.Errors[1] == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	pub.err = types.ErrPublishFailed
	if _, err := s.AcceptBatch(context.Background(), types.SourceFeeder, []models.PositionMessage{
		{IcaoAddress: "4CA7B5", Latitude: fptr(1)},
	}); !errors.Is(err, types.ErrPublishFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestFeederLimiter(t *testing.T) {
	l := NewFeederLimiter(1, 3)

	if !l.AllowN("pi-1", 3) {
		t.Fatal("burst must be allowed")
	}
	if l.AllowN("pi-1", 1) {
		t.Fatal("bucket must be empty")
	}
	if !l.AllowN("pi-2", 1) {
		t.Fatal("feeders are limited independently")
	}
	if l.AllowN("pi-3", 4) {
		t.Fatal("more than the burst is never allowed")
	}
}
