package webevents

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	gosse "github.com/alexandrevicenzi/go-sse"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
)

const SnapshotEvent string = "snapshot"

type WebEvents interface {
	http.Handler
	ServeWithSnapshot(w http.ResponseWriter, r *http.Request, snapshot types.Snapshot)
	Shutdown()
	Publish(event, id string, data any) error
	Observe(ctx context.Context, snapshot types.Snapshot)
}

type webEvents struct {
	s *gosse.Server
}

// New creates a server-sent events broadcaster. Every connected client
// receives every message regardless of the path it connected on.
func New() WebEvents {
	return &webEvents{
		s: gosse.NewServer(&gosse.Options{
			ChannelNameFunc: func(r *http.Request) string {
				return SnapshotEvent
			},
		}),
	}
}

func (we *webEvents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	we.s.ServeHTTP(w, r)
}

// ServeWithSnapshot serves the event stream like ServeHTTP, but writes
// snapshot to this client as soon as it has been registered.
func (we *webEvents) ServeWithSnapshot(w http.ResponseWriter, r *http.Request, snapshot types.Snapshot) {
	if _, ok := w.(http.Flusher); !ok {
		we.s.ServeHTTP(w, r)
		return
	}

	message, err := newMessage(SnapshotEvent, snapshotID(snapshot), snapshot)
	if err != nil {
		log := logging.GetLoggerFromContext(r.Context())
		log.Error().Err(err).Msg("failed to marshal initial snapshot")
		we.s.ServeHTTP(w, r)
		return
	}

	we.s.ServeHTTP(&primedWriter{ResponseWriter: w, first: message.Bytes()}, r)
}

func (we *webEvents) Shutdown() {
	we.s.Shutdown()
}

func (we *webEvents) Publish(event, id string, data any) error {
	message, err := newMessage(event, id, data)
	if err != nil {
		return err
	}

	we.s.SendMessage("", message)

	return nil
}

// Observe pushes a snapshot to every connected client.
func (we *webEvents) Observe(ctx context.Context, snapshot types.Snapshot) {
	if err := we.Publish(SnapshotEvent, snapshotID(snapshot), snapshot); err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msg("failed to publish snapshot")
	}
}

func newMessage(event, id string, data any) (*gosse.Message, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return gosse.NewMessage(id, string(b), event), nil
}

func snapshotID(snapshot types.Snapshot) string {
	return strconv.FormatInt(snapshot.LastUpdate.UnixMilli(), 10)
}

// primedWriter writes first ahead of anything else on the first flush. The
// sse server flushes once right after the client has joined its channel.
type primedWriter struct {
	http.ResponseWriter
	first []byte
}

func (pw *primedWriter) Flush() {
	if pw.first != nil {
		pw.ResponseWriter.Write(pw.first)
		pw.first = nil
	}

	pw.ResponseWriter.(http.Flusher).Flush()
}
