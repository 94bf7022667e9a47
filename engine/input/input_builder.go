package input

import "log/slog"

// InputBuilderOption is a functional option for configuring the input device.
type InputBuilderOption func(*inputImpl)

// WithLogger sets the logger for device connection messages.
//
// Parameters:
//   - logger: the structured logger (nil keeps the default)
//
// Returns:
//   - InputBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) InputBuilderOption {
	return func(in *inputImpl) {
		if logger != nil {
			in.logger = logger
		}
	}
}
