package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/services/tracking"
	"github.com/piresc/triptrack/services/tracking/dispatcher"
	"github.com/piresc/triptrack/services/tracking/mocks"
	"github.com/piresc/triptrack/services/tracking/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

type channelSink struct {
	events chan models.PositionEvent
}

func newChannelSink() *channelSink {
	return &channelSink{events: make(chan models.PositionEvent, 16)}
}

func (s *channelSink) Send(event models.PositionEvent) error {
	s.events <- event
	return nil
}

func (s *channelSink) KeepAlive() error { return nil }

func (s *channelSink) next(t *testing.T) models.PositionEvent {
	t.Helper()
	select {
	case event := <-s.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.PositionEvent{}
	}
}

type fixture struct {
	uc         *TrackingUC
	store      tracking.PositionStore
	dispatcher tracking.StreamDispatcher
	gateway    *mocks.MockTrackingGW
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := repository.NewPositionStore()
	d := dispatcher.NewStreamDispatcher(store, dispatcher.WithKeepAliveInterval(time.Hour))
	store.AddListener(d)
	t.Cleanup(d.Close)

	gw := mocks.NewMockTrackingGW(ctrl)

	return &fixture{
		uc:         NewTrackingUC(store, d, gw, nil),
		store:      store,
		dispatcher: d,
		gateway:    gw,
	}
}

func TestPublishPosition_Success(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		PublishPosition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event models.PositionEvent) error {
			assert.Equal(t, "R1", event.TripID)
			assert.Equal(t, 14.6928, event.Coords.Lat)
			assert.False(t, event.Ended)
			return nil
		})

	event, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat:   float(14.6928),
		Lng:   float(-17.4467),
		Speed: float(45),
	})

	require.NoError(t, err)
	assert.Equal(t, "R1", event.TripID)
	assert.Equal(t, models.Coordinates{Lat: 14.6928, Lng: -17.4467}, event.Coords)
	require.NotNil(t, event.Speed)
	assert.Equal(t, 45.0, *event.Speed)
	assert.Nil(t, event.Heading)
	assert.False(t, event.UpdatedAt.IsZero())

	stored, ok := f.store.Get("R1")
	require.True(t, ok)
	assert.Equal(t, event.UpdatedAt, stored.UpdatedAt)
}

func TestPublishPosition_BoundaryValuesAccepted(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().PublishPosition(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(90), Lng: float(-180), Speed: float(0), Heading: float(0),
	})
	require.NoError(t, err)

	_, err = f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(-90), Lng: float(180), Heading: float(359.99),
	})
	require.NoError(t, err)
}

func TestPublishPosition_Validation(t *testing.T) {
	tests := []struct {
		name    string
		tripID  string
		req     models.PublishPositionRequest
		field   string
		message string
	}{
		{
			name:    "latitude above range",
			tripID:  "R1",
			req:     models.PublishPositionRequest{Lat: float(91), Lng: float(0)},
			field:   "lat",
			message: "must be between -90 and 90",
		},
		{
			name:    "longitude above range",
			tripID:  "R1",
			req:     models.PublishPositionRequest{Lat: float(0), Lng: float(181)},
			field:   "lng",
			message: "must be between -180 and 180",
		},
		{
			name:    "negative speed",
			tripID:  "R1",
			req:     models.PublishPositionRequest{Lat: float(0), Lng: float(0), Speed: float(-1)},
			field:   "speed",
			message: "must not be negative",
		},
		{
			name:    "heading of a full turn",
			tripID:  "R1",
			req:     models.PublishPositionRequest{Lat: float(0), Lng: float(0), Heading: float(360)},
			field:   "heading",
			message: "must be in [0, 360)",
		},
		{
			name:    "missing latitude",
			tripID:  "R1",
			req:     models.PublishPositionRequest{Lng: float(0)},
			field:   "lat",
			message: "is required",
		},
		{
			name:    "missing trip id",
			tripID:  "  ",
			req:     models.PublishPositionRequest{Lat: float(0), Lng: float(0)},
			field:   "trip_id",
			message: "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gateway.EXPECT().PublishPosition(gomock.Any(), gomock.Any()).Return(nil)

			before, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
				Lat: float(1), Lng: float(2),
			})
			require.NoError(t, err)

			event, err := f.uc.PublishPosition(context.Background(), tt.tripID, tt.req)

			assert.Nil(t, event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tracking.ErrInvalidInput))

			var verr *tracking.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)

			stored, ok := f.store.Get("R1")
			require.True(t, ok)
			assert.Equal(t, before.Coords, stored.Coordinates)
			assert.Equal(t, before.UpdatedAt, stored.UpdatedAt)
		})
	}
}

func TestPublishPosition_GatewayErrorIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().
		PublishPosition(gomock.Any(), gomock.Any()).
		Return(errors.New("nats: connection closed"))

	event, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(1), Lng: float(2),
	})

	require.NoError(t, err)
	assert.Equal(t, "R1", event.TripID)
}

func TestPublishPosition_WithoutGateway(t *testing.T) {
	store := repository.NewPositionStore()
	d := dispatcher.NewStreamDispatcher(store)
	store.AddListener(d)
	defer d.Close()

	uc := NewTrackingUC(store, d, nil, nil)

	_, err := uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(1), Lng: float(2),
	})
	require.NoError(t, err)
	require.NoError(t, uc.EndTracking(context.Background(), "R1", "done"))
}

func TestGetLatestPosition(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().PublishPosition(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.uc.GetLatestPosition(context.Background(), "R1")
	assert.ErrorIs(t, err, tracking.ErrPositionNotFound)

	published, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(14.6928), Lng: float(-17.4467), Heading: float(90),
	})
	require.NoError(t, err)

	got, err := f.uc.GetLatestPosition(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, published, got)

	_, err = f.uc.GetLatestPosition(context.Background(), "")
	assert.ErrorIs(t, err, tracking.ErrInvalidInput)
}

func TestGetLatestPosition_StaleIsNotFound(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := repository.NewPositionStore(repository.WithClock(clock))
	d := dispatcher.NewStreamDispatcher(store)
	store.AddListener(d)
	defer d.Close()
	uc := NewTrackingUC(store, d, nil, nil)

	_, err := uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(1), Lng: float(2),
	})
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)

	_, err = uc.GetLatestPosition(context.Background(), "R1")
	assert.ErrorIs(t, err, tracking.ErrPositionNotFound)
}

func TestEndTracking(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.gateway.EXPECT().PublishPosition(gomock.Any(), gomock.Any()).Return(nil),
		f.gateway.EXPECT().
			PublishEnded(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event models.PositionEvent) error {
				assert.True(t, event.Ended)
				assert.Equal(t, "trip completed", event.Reason)
				assert.Equal(t, models.Coordinates{Lat: 14.6928, Lng: -17.4467}, event.Coords)
				return nil
			}),
	)

	sink := newChannelSink()
	sub, err := f.uc.OpenStream(context.Background(), "R1", sink)
	require.NoError(t, err)

	_, err = f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(14.6928), Lng: float(-17.4467), Speed: float(45),
	})
	require.NoError(t, err)

	first := sink.next(t)
	assert.False(t, first.Ended)
	require.NotNil(t, first.Speed)
	assert.Equal(t, 45.0, *first.Speed)

	require.NoError(t, f.uc.EndTracking(context.Background(), "R1", "trip completed"))

	ended := sink.next(t)
	assert.True(t, ended.Ended)
	assert.Equal(t, "trip completed", ended.Reason)
	assert.Equal(t, first.Coords, ended.Coords)

	_, err = f.uc.GetLatestPosition(context.Background(), "R1")
	assert.ErrorIs(t, err, tracking.ErrPositionNotFound)

	select {
	case <-sub.Done():
		t.Fatal("ended event must not close the stream")
	default:
	}
	assert.Equal(t, 1, f.dispatcher.Subscribers("R1"))
}

func TestEndTracking_UnknownTrip(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().
		PublishEnded(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event models.PositionEvent) error {
			assert.True(t, event.Ended)
			assert.Equal(t, models.Coordinates{}, event.Coords)
			return errors.New("nats: timeout")
		})

	assert.NoError(t, f.uc.EndTracking(context.Background(), "ghost", ""))
}

func TestEndTracking_MissingTripID(t *testing.T) {
	f := newFixture(t)
	err := f.uc.EndTracking(context.Background(), "", "done")
	assert.ErrorIs(t, err, tracking.ErrInvalidInput)
}

func TestOpenStream(t *testing.T) {
	f := newFixture(t)
	f.gateway.EXPECT().PublishPosition(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.uc.PublishPosition(context.Background(), "R1", models.PublishPositionRequest{
		Lat: float(3), Lng: float(4),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sink := newChannelSink()
	sub, err := f.uc.OpenStream(ctx, "R1", sink)
	require.NoError(t, err)
	assert.Equal(t, "R1", sub.TripID())

	replay := sink.next(t)
	assert.Equal(t, models.Coordinates{Lat: 3, Lng: 4}, replay.Coords)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end after cancel")
	}
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, f.dispatcher.Subscribers("R1"))

	_, err = f.uc.OpenStream(context.Background(), "", newChannelSink())
	assert.ErrorIs(t, err, tracking.ErrInvalidInput)
}
