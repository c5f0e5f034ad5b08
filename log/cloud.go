package log

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/logging"
)

const cloudLogID = "duochat"

// CloudWriter ships the handler's JSON records to Cloud Logging. It plugs in
// wherever an io.Writer is expected, so the same ClientHandler output can go
// to a file locally and to Cloud Logging when a project is configured.
type CloudWriter struct {
	client *logging.Client
	logger *logging.Logger
}

// NewCloudWriter connects to Cloud Logging for the given project.
func NewCloudWriter(ctx context.Context, projectID string) (*CloudWriter, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &CloudWriter{
		client: client,
		logger: client.Logger(cloudLogID),
	}, nil
}

// Write queues one JSON record as a Cloud Logging entry.
func (w *CloudWriter) Write(p []byte) (int, error) {
	payload := make([]byte, len(p))
	copy(payload, p)
	w.logger.Log(logging.Entry{Payload: json.RawMessage(payload)})
	return len(p), nil
}

// Close flushes pending entries and releases the client.
func (w *CloudWriter) Close() error {
	return w.client.Close()
}
