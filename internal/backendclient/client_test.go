package backendclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/domain"
)

func TestGetInitialDataUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/initial-data", r.URL.Path)
		_ = json.NewEncoder(w).Encode(envelope[domain.InitialData]{
			Data: domain.InitialData{LastTicketSequence: 42, Services: []domain.ServiceType{{ID: 1, Name: "Wash"}}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	data, err := c.GetInitialData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), data.LastTicketSequence)
	assert.Len(t, data.Services, 1)
}

func TestRegisterTicketSendsJSONBody(t *testing.T) {
	var gotTicket domain.Ticket
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotTicket))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.RegisterTicket(context.Background(), domain.Ticket{TicketNumber: "1234567890128"})
	require.NoError(t, err)
	assert.Equal(t, "1234567890128", gotTicket.TicketNumber)
}

func TestNonSuccessStatusYieldsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.RegisterTicket(context.Background(), domain.Ticket{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeTransportFailure))
}

func TestGetQueueInfoHitsQueueInfoPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/queue-info", r.URL.Path)
		_ = json.NewEncoder(w).Encode(envelope[domain.VehicleQueueInfo]{
			Data: domain.VehicleQueueInfo{CountAhead: 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	info, err := c.GetQueueInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, info.CountAhead)
}
