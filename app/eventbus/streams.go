package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	"github.com/nats-io/nats.go/jetstream"
)

// InitializeStreams creates or extends the JetStream streams the service publishes to.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	streamConfigs := []jetstream.StreamConfig{
		{
			Name:     attemptevents.AttemptStreamName,
			Subjects: []string{attemptevents.AttemptSubjects},
		},
	}

	for _, streamConfig := range streamConfigs {
		stream, err := js.Stream(ctx, streamConfig.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.Error("Failed to create JetStream stream", slog.String("stream", streamConfig.Name), slog.Any("error", err))
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Created JetStream stream", slog.String("stream", streamConfig.Name))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check stream: %w", err)
		}

		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		missing := false
		for _, subject := range streamConfig.Subjects {
			if !slices.Contains(info.Config.Subjects, subject) {
				info.Config.Subjects = append(info.Config.Subjects, subject)
				missing = true
			}
		}
		if missing {
			if _, err := js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Stream updated with new subjects", slog.String("stream", streamConfig.Name))
		}
	}
	return nil
}
