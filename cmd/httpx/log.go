package httpx

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithLog logs every outgoing request, 5xx responses and transport failures are logged as errors
func WithLog(log *zap.Logger) func(Client) Client {
	return func(c Client) Client {
		if log == nil {
			return c
		}

		return ClientFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := c.Do(req)

			fields := []zap.Field{
				zap.String("http_method", req.Method),
				zap.String("http_url", req.URL.String()),
				zap.Duration("http_latency", time.Since(start)),
			}

			if err != nil {
				log.Error(fmt.Sprintf("%s request to %s has failed", req.Method, req.URL.Path), append(fields, zap.Error(err))...)
				return resp, err
			}

			fields = append(fields, zap.Int("http_status", resp.StatusCode))

			if resp.StatusCode/100 == 5 {
				log.Error(fmt.Sprintf("%s request to %s failed with status code %3d", req.Method, req.URL.Path, resp.StatusCode), fields...)
			} else {
				log.Debug(fmt.Sprintf("%s request to %s with status code %3d", req.Method, req.URL.Path, resp.StatusCode), fields...)
			}

			return resp, nil
		})
	}
}
