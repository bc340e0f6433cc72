// caretaker-receiver is a local stand-in for a caretaker's webhook
// endpoint. It logs every delivery, verifies signatures when SECRET is
// set, and keeps simple stats for manual testing.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

type delivery struct {
	Timestamp      string `json:"timestamp"`
	DeliveryID     string `json:"delivery_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	AlertID        string `json:"alert_id,omitempty"`
	SignatureValid *bool  `json:"signature_valid,omitempty"`
	Body           string `json:"body"`
}

type stats struct {
	Count          int64      `json:"count"`
	LastDeliveries []delivery `json:"last_deliveries"`
	Since          string     `json:"since"`
}

var (
	mu             sync.Mutex
	count          int64
	lastDeliveries []delivery
	since          time.Time
	maxStored      = 50
	secret         string
)

func main() {
	since = time.Now().UTC()
	secret = os.Getenv("SECRET")

	addr := ":9000"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	http.HandleFunc("/hook", hookHandler)
	http.HandleFunc("/stats", statsHandler)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	http.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		count = 0
		lastDeliveries = nil
		since = time.Now().UTC()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "reset")
	})

	if secret == "" {
		log.Println("caretaker-receiver: SECRET not set, signature verification disabled")
	}
	log.Printf("caretaker-receiver listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func hookHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	var payload struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		AlertID string `json:"alert_id"`
	}
	_ = json.Unmarshal(body, &payload)

	d := delivery{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		DeliveryID: r.Header.Get("X-HealthAlert-Delivery-ID"),
		Kind:       payload.Kind,
		Message:    payload.Message,
		AlertID:    payload.AlertID,
		Body:       string(body),
	}

	if secret != "" {
		valid := verifySignature(body, r.Header.Get("X-HealthAlert-Signature"))
		d.SignatureValid = &valid
		if !valid {
			log.Printf("hook: BAD SIGNATURE on delivery %s", d.DeliveryID)
		}
	}

	mu.Lock()
	count++
	lastDeliveries = append(lastDeliveries, d)
	if len(lastDeliveries) > maxStored {
		lastDeliveries = lastDeliveries[len(lastDeliveries)-maxStored:]
	}
	current := count
	mu.Unlock()

	log.Printf("hook received #%d: kind=%s message=%q", current, d.Kind, d.Message)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"received":%d}`, current)
}

func verifySignature(body []byte, header string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(header))
}

func statsHandler(w http.ResponseWriter, _ *http.Request) {
	mu.Lock()
	s := stats{
		Count:          count,
		LastDeliveries: lastDeliveries,
		Since:          since.Format(time.RFC3339),
	}
	mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}
