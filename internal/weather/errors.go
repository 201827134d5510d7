package weather

import "fmt"

// ForecastProcessingError is returned by BuildForecast when any provider fetch fails.
// No partial forecast accompanies it.
type ForecastProcessingError struct {
	Err error
}

func (e *ForecastProcessingError) Error() string {
	return fmt.Sprintf("unexpected error during the forecast processing: %v", e.Err)
}

func (e *ForecastProcessingError) Unwrap() error {
	return e.Err
}
