package db

import (
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
)

// NewSettingsListener opens a dedicated LISTEN connection on
// SettingsChangedChannel. Receive from Notify to get change payloads.
func NewSettingsListener(databaseURL string) (*pq.Listener, error) {
	listener := pq.NewListener(databaseURL, listenerMinReconnect, listenerMaxReconnect, logListenerEvent)

	if err := listener.Listen(SettingsChangedChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", SettingsChangedChannel, err)
	}

	log.Printf("✅ Listening for %s notifications", SettingsChangedChannel)
	return listener, nil
}

func logListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		log.Printf("🔌 Settings listener connected")
	case pq.ListenerEventDisconnected:
		log.Printf("⚠️ Settings listener disconnected: %v", err)
	case pq.ListenerEventReconnected:
		log.Printf("🔌 Settings listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		log.Printf("❌ Settings listener connection attempt failed: %v", err)
	}
}
