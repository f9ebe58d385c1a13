package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
)

type ActivityStore interface {
	CreateActivityLog(ctx context.Context, log *repository.ActivityLog) error
}

type EmailSender interface {
	Send(ctx context.Context, email *Email) error
}

// Messages
type RecordActivity struct {
	Log *repository.ActivityLog
}

type SendEmail struct {
	Email  *Email
	Reason string
}

// notificationActor performs side effects that must never block or fail
// the request that triggered them.
type notificationActor struct {
	store   ActivityStore
	mailer  EmailSender
	logger  *zap.Logger
	timeout time.Duration
}

func (a *notificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *RecordActivity:
		if a.store == nil {
			a.logger.Debug("Activity store unavailable, dropping entry", zap.String("action", msg.Log.Action))
			return
		}
		c, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.store.CreateActivityLog(c, msg.Log); err != nil {
			a.logger.Warn("Failed to record activity",
				zap.String("action", msg.Log.Action),
				zap.String("entity_id", msg.Log.EntityID),
				zap.Error(err))
		}

	case *SendEmail:
		if a.mailer == nil {
			return
		}
		c, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.mailer.Send(c, msg.Email); err != nil {
			a.logger.Warn("Failed to send email",
				zap.String("reason", msg.Reason),
				zap.Strings("to", msg.Email.To),
				zap.Error(err))
			return
		}
		a.logger.Info("Email sent", zap.String("reason", msg.Reason), zap.Strings("to", msg.Email.To))

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopped:
		a.logger.Info("Notification actor stopped")
	}
}

// Notifier hands activity entries and emails to a single notification
// actor. Every call returns immediately.
type Notifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewNotifier(store ActivityStore, mailer EmailSender, logger *zap.Logger) (*Notifier, error) {
	system := actor.NewActorSystem()
	named := logger.Named("notification-actor")

	props := actor.PropsFromProducer(func() actor.Actor {
		return &notificationActor{store: store, mailer: mailer, logger: named, timeout: 10 * time.Second}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Notifier{system: system, pid: pid, logger: logger}, nil
}

func (n *Notifier) RecordActivity(service, action, entityID, actorName string, data map[string]interface{}) {
	n.system.Root.Send(n.pid, &RecordActivity{Log: &repository.ActivityLog{
		Service:   service,
		Action:    action,
		EntityID:  entityID,
		Actor:     actorName,
		Data:      data,
		CreatedAt: time.Now(),
	}})
}

func (n *Notifier) SendEmail(email *Email, reason string) {
	if email == nil || len(email.To) == 0 {
		return
	}
	n.system.Root.Send(n.pid, &SendEmail{Email: email, Reason: reason})
}

// Close drains pending notifications and stops the actor system.
func (n *Notifier) Close() error {
	if err := n.system.Root.PoisonFuture(n.pid).Wait(); err != nil {
		n.logger.Warn("Notification actor did not stop cleanly", zap.Error(err))
	}
	n.system.Shutdown()
	return nil
}
