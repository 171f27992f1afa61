package service

import (
	"errors"
	"log/slog"

	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/repository"
)

// ErrConcurrentUpdate is returned when a row kept changing underneath a
// read-modify-write. Clients may retry the request.
var ErrConcurrentUpdate = errors.New("record was updated concurrently, please retry")

// retryOnConflict runs attempt and re-runs it once if the write lost an
// optimistic version check. attempt must re-read the row it writes.
func retryOnConflict(entity string, attempt func() error) error {
	err := attempt()
	if !errors.Is(err, repository.ErrVersionConflict) {
		return err
	}

	metrics.ConcurrentUpdates.WithLabelValues(entity, "retried").Inc()
	slog.Debug("version conflict, retrying", "entity", entity)

	err = attempt()
	if errors.Is(err, repository.ErrVersionConflict) {
		metrics.ConcurrentUpdates.WithLabelValues(entity, "failed").Inc()
		return ErrConcurrentUpdate
	}
	return err
}
