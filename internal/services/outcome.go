package services

import (
	"fmt"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/maxaizer/placement-portal/internal/logger"
	"github.com/maxaizer/placement-portal/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// settle counts workflow refusals by kind and hides unexpected store errors
// behind KindInternal after logging them.
func settle(operation string, err error) error {
	if err == nil {
		return nil
	}

	var failure *failures.Error
	if errors.As(err, &failure) && failure.Kind != failures.KindInternal {
		metrics.RejectedOperationsCounter.WithLabelValues(string(failure.Kind)).Inc()
		return err
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("%s failed: %v", operation, err)
	if failure != nil {
		return err
	}
	return failures.Internal(operation+" failed", err)
}

func countTransition(entity string, state any) {
	metrics.TransitionsCounter.WithLabelValues(entity, fmt.Sprint(state)).Inc()
}

func publish(bus EventBus.Bus, topic string, event any) {
	if bus == nil {
		return
	}
	bus.Publish(topic, event)
}

func validateInput(validate *validator.Validate, input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return errors.Wrap(err, "validate input")
	}

	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[strings.ToLower(fe.Field())] = rule
	}
	return failures.Validation("invalid input", fields)
}
