package watch

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

const (
	sseEventGraph  = "graph"
	sseEventStatus = "status"
)

// update is one rebuild as shown in the browser.
type update struct {
	DOT    string
	Status string
}

// broker fans rebuilds out to connected viewers. New viewers get the latest update.
type broker struct {
	mu      sync.Mutex
	clients map[chan update]struct{}
	latest  *update
}

func newBroker() *broker {
	return &broker{clients: make(map[chan update]struct{})}
}

func (b *broker) subscribe() chan update {
	ch := make(chan update, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[ch] = struct{}{}
	if b.latest != nil {
		ch <- *b.latest
	}
	return ch
}

func (b *broker) unsubscribe(ch chan update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, ch)
	close(ch)
}

// publish sends u to every viewer. Slow viewers miss intermediate updates.
func (b *broker) publish(u update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = &u
	for ch := range b.clients {
		select {
		case ch <- u:
		default:
		}
	}
}

func newServer(b *broker, port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleIndex)
	mux.HandleFunc("/events", handleSSE(b))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexHTML)); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func handleSSE(b *broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := b.subscribe()
		defer b.unsubscribe(ch)

		for {
			select {
			case <-r.Context().Done():
				return
			case u, ok := <-ch:
				if !ok {
					return
				}
				writeEvent(w, sseEventStatus, u.Status)
				writeEvent(w, sseEventGraph, u.DOT)
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, name, data string) {
	fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
