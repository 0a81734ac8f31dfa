package cassandra

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/senser/internal/config"
)

func TestQualify(t *testing.T) {
	if got := qualify("sensor", temperatureTable); got != "sensor.temperature_values" {
		t.Errorf("qualify = %q", got)
	}
}

func TestNewSessionRejectsUnknownConsistency(t *testing.T) {
	_, err := NewSession(config.CassandraConfig{Hosts: []string{"127.0.0.1"}, Consistency: "mostly"})
	if err == nil || !strings.Contains(err.Error(), "consistency") {
		t.Fatalf("err = %v, want consistency error", err)
	}
}

func newLiveRepo(t *testing.T) *MetricsRepo {
	t.Helper()
	hosts := os.Getenv("SENSER_TEST_CASSANDRA_HOSTS")
	if hosts == "" {
		t.Skip("SENSER_TEST_CASSANDRA_HOSTS not set")
	}
	session, err := NewSession(config.CassandraConfig{
		Hosts:       strings.Split(hosts, ","),
		Consistency: "one",
		Timeout:     10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	keyspace := fmt.Sprintf("senser_test_%d", time.Now().UnixNano())
	repo := NewMetricsRepository(session, keyspace, 10*time.Second)
	t.Cleanup(func() {
		_ = session.Query("DROP KEYSPACE IF EXISTS " + keyspace).Exec()
		_ = repo.Close()
	})
	if err := repo.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	return repo
}

func TestMetricsRepo_Live(t *testing.T) {
	repo := newLiveRepo(t)
	ctx := context.Background()

	for _, temp := range []float64{1, 3, 5} {
		if err := repo.AppendTemperature(ctx, 1, temp); err != nil {
			t.Fatalf("AppendTemperature: %v", err)
		}
	}
	stats, err := repo.TemperatureStats(ctx)
	if err != nil {
		t.Fatalf("TemperatureStats: %v", err)
	}
	if len(stats) != 1 || stats[0].Min != 1 || stats[0].Max != 5 || stats[0].Avg != 3 {
		t.Errorf("stats = %+v", stats)
	}

	if err := repo.AppendBattery(ctx, 1, 0.1); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendBattery(ctx, 1, 0.9); err != nil {
		t.Fatal(err)
	}
	facts, err := repo.LatestBatteryLevels(ctx)
	if err != nil {
		t.Fatalf("LatestBatteryLevels: %v", err)
	}
	if len(facts) != 1 || facts[0].Battery != 0.9 {
		t.Errorf("facts = %+v, want only the latest value", facts)
	}

	_ = repo.AddTypeMembership(ctx, "temperature", 1)
	_ = repo.AddTypeMembership(ctx, "temperature", 2)
	_ = repo.AddTypeMembership(ctx, "humidity", 3)
	counts, err := repo.CountByType(ctx)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	byType := map[string]int64{}
	for _, c := range counts {
		byType[c.Type] = c.Quantity
	}
	if byType["temperature"] != 2 || byType["humidity"] != 1 {
		t.Errorf("counts = %v", byType)
	}
}
