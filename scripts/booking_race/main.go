package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type attempt struct {
	Client   string
	Status   int
	Code     string
	Duration time.Duration
	Err      error
}

// booking_race fires concurrent bookings of one slot from distinct clients against a running server
// and fails unless exactly one of them wins.
func main() {
	var (
		base      string
		shopID    string
		barberID  string
		serviceID string
		slot      string
		clients   int
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&shopID, "shop", "", "Barbershop ID")
	flag.StringVar(&barberID, "barber", "", "Barber ID")
	flag.StringVar(&serviceID, "service", "", "Service ID")
	flag.StringVar(&slot, "slot", "", "Slot instant (RFC3339)")
	flag.IntVar(&clients, "clients", 20, "Number of concurrent clients")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if shopID == "" || barberID == "" || serviceID == "" || slot == "" {
		flag.Usage()
		os.Exit(2)
	}
	slotAt, err := time.Parse(time.RFC3339, slot)
	if err != nil {
		log.Fatalf("invalid slot: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	tokens := make([]string, clients)
	for i := range tokens {
		tokens[i], err = devToken(client, base, fmt.Sprintf("race-client-%02d", i))
		if err != nil {
			log.Fatalf("failed to mint token: %v", err)
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"barber_id":  barberID,
		"service_id": serviceID,
		"date":       slotAt.UTC(),
	})

	results := make([]attempt, clients)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = book(client, base, shopID, tokens[i], payload)
			results[i].Client = fmt.Sprintf("race-client-%02d", i)
		}(i)
	}
	close(start)
	wg.Wait()

	winners := printReport(results)
	if winners != 1 {
		fmt.Printf("expected exactly one booking, got %d\n", winners)
		os.Exit(1)
	}
}

func devToken(client *http.Client, base, userID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"user_id": userID, "role": "CLIENT"})
	resp, err := client.Post(strings.TrimRight(base, "/")+"/auth/dev-token", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dev-token returned %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", err
	}
	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token")
	}
	return token.AccessToken, nil
}

func book(client *http.Client, base, shopID, token string, payload []byte) attempt {
	url := fmt.Sprintf("%s/barbershops/%s/appointments", strings.TrimRight(base, "/"), shopID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return attempt{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	started := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return attempt{Err: err, Duration: time.Since(started)}
	}
	defer resp.Body.Close()
	res := attempt{Status: resp.StatusCode, Duration: time.Since(started)}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Err = err
		return res
	}
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		res.Code = env.Error.Code
	}
	return res
}

func printReport(results []attempt) int {
	fmt.Println("Booking Race Report")
	fmt.Println("===================")
	counts := map[string]int{}
	winners := 0
	for _, res := range results {
		outcome := res.Code
		switch {
		case res.Err != nil:
			outcome = "ERROR"
			fmt.Printf("[ERROR] %s: %v\n", res.Client, res.Err)
		case res.Status == http.StatusCreated:
			outcome = "BOOKED"
			winners++
			fmt.Printf("[BOOKED] %s (%s)\n", res.Client, res.Duration)
		case outcome == "":
			outcome = fmt.Sprintf("HTTP_%d", res.Status)
		}
		counts[outcome]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-18s %d\n", k, counts[k])
	}
	return winners
}
