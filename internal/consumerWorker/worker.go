package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"eventman/internal/dto"
	"eventman/internal/mailer"
	"eventman/internal/rabbit"
	"eventman/internal/repo"
)

// Reader consumes attendee notification messages and sends the matching
// email. Mail failures are logged and the message acked anyway; requeueing
// happens only for undecodable or unreadable records.
type Reader struct {
	RMQ    *rabbit.Client
	repo   repo.Repository
	mail   *mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository, mail *mailer.Mailer) *Reader {
	return &Reader{
		RMQ:  rmq,
		repo: repo,
		mail: mail,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification reader started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.AttendeeNotificationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("failed to unmarshal notification: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Int64("attendee_id", msg.AttendeeID).
				Int64("event_id", msg.EventID).
				Str("kind", msg.Kind).
				Msg("received attendee notification")

			event, err := r.repo.GetEventByID(cctx, msg.EventID)
			if err != nil {
				zlog.Logger.Error().
					Err(err).
					Int64("event_id", msg.EventID).
					Msg("failed to load event for notification")
				return nil
			}

			switch msg.Kind {
			case dto.NotifyRegistered:
				err = r.mail.SendRegistered(event.Name, msg.Email)
			case dto.NotifyCheckedIn:
				err = r.mail.SendCheckedIn(event.Name, msg.Email)
			default:
				zlog.Logger.Warn().Str("kind", msg.Kind).Msg("unknown notification kind")
				return nil
			}
			if err != nil {
				zlog.Logger.Warn().
					Err(err).
					Str("email", msg.Email).
					Msg("failed to send notification email")
			}
			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
