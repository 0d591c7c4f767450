package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/internal/events"
	"github.com/NomadCrew/nomad-feedback-backend/internal/store"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// FeedbackService runs the store operations and fans successful mutations out
// to the event stream and the notification mail. Neither side effect can fail
// the request.
type FeedbackService struct {
	store      store.FeedbackStore
	publisher  types.EventPublisher
	email      types.EmailService
	jobs       JobSubmitter
	log        *zap.SugaredLogger
	operations *prometheus.CounterVec
}

// NewFeedbackService wires the store to its side effects. publisher and
// email may be nil.
func NewFeedbackService(s store.FeedbackStore, publisher types.EventPublisher, email types.EmailService, reg prometheus.Registerer) *FeedbackService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &FeedbackService{
		store:     s,
		publisher: publisher,
		email:     email,
		log:       logger.GetLogger().Named("feedback"),
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_operations_total",
			Help: "Feedback store operations by operation and result",
		}, []string{"operation", "result"}),
	}
}

// WithNotificationQueue makes new-feedback emails go through jobs instead of
// being sent while the request waits.
func (s *FeedbackService) WithNotificationQueue(jobs JobSubmitter) *FeedbackService {
	s.jobs = jobs
	return s
}

func (s *FeedbackService) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	items, err := s.store.ListFeedback(ctx)
	s.observe("list", err)
	return items, err
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, input *types.FeedbackCreate) (*types.Feedback, error) {
	created, err := s.store.CreateFeedback(ctx, input)
	s.observe("create", err)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Feedback created", "id", created.ID, "type", created.Type, "email", logger.MaskEmail(created.Email))
	s.publish(ctx, types.EventTypeFeedbackCreated, created)
	s.notify(ctx, created)
	return created, nil
}

func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error) {
	updated, err := s.store.UpdateFeedbackStatus(ctx, id, status)
	s.observe("update_status", err)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Feedback status updated", "id", id, "status", status)
	s.publish(ctx, types.EventTypeFeedbackStatusUpdated, updated)
	return updated, nil
}

func (s *FeedbackService) DeleteFeedback(ctx context.Context, id string) error {
	err := s.store.DeleteFeedback(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return err
	}

	s.log.Infow("Feedback deleted", "id", id)
	s.publish(ctx, types.EventTypeFeedbackDeleted, &types.Feedback{ID: id})
	return nil
}

func (s *FeedbackService) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.operations.WithLabelValues(operation, result).Inc()
}

func (s *FeedbackService) publish(ctx context.Context, eventType types.EventType, fb *types.Feedback) {
	event, err := events.NewFeedbackEvent(eventType, fb)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.log.Warnw("Failed to publish feedback event", "type", eventType, "id", fb.ID, "error", err)
	}
}

func (s *FeedbackService) notify(ctx context.Context, fb *types.Feedback) {
	if s.email == nil {
		return
	}
	if s.jobs != nil {
		record := *fb
		queued := s.jobs.Submit(Job{
			Name: "new-feedback-email:" + record.ID,
			Execute: func(jobCtx context.Context) error {
				return s.email.SendNewFeedbackEmail(jobCtx, &record)
			},
		})
		if !queued {
			s.log.Warnw("New feedback email dropped", "id", record.ID)
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.email.SendNewFeedbackEmail(ctx, fb); err != nil {
		s.log.Warnw("Failed to send new feedback email", "id", fb.ID, "error", err)
	}
}
