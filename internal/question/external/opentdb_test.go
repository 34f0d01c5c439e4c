package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchParsesQuestions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"response_code":0,"results":[{
			"category":"Science",
			"type":"multiple",
			"difficulty":"easy",
			"question":"Sample?",
			"correct_answer":"yes",
			"incorrect_answers":["no","maybe","never"]
		}]}`))
	}))
	defer srv.Close()

	client := NewOpenTDBClient(srv.URL, srv.Client())
	results, err := client.Fetch(context.Background(), 1, "easy", "multiple")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Sample?", results[0].Question)
	assert.Equal(t, "yes", results[0].CorrectAnswer)
	assert.Len(t, results[0].IncorrectAnswer, 3)
	assert.Contains(t, gotQuery, "amount=1")
	assert.Contains(t, gotQuery, "difficulty=easy")
	assert.Contains(t, gotQuery, "type=multiple")
}

func TestFetchMapsHTTP429ToRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenTDBClient(srv.URL, srv.Client())
	_, err := client.Fetch(context.Background(), 1, "", "")
	require.Error(t, err)
	assert.True(t, RateLimited(err))
}

func TestFetchSurfacesAPIResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":5,"results":[]}`))
	}))
	defer srv.Close()

	client := NewOpenTDBClient(srv.URL, srv.Client())
	_, err := client.Fetch(context.Background(), 1, "", "")
	require.Error(t, err)
	assert.True(t, RateLimited(err))

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":1,"results":[]}`))
	}))
	defer srv2.Close()

	client = NewOpenTDBClient(srv2.URL, srv2.Client())
	_, err = client.Fetch(context.Background(), 1, "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNoResults, apiErr.Code)
	assert.False(t, RateLimited(err))
}

func TestFetchRejectsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewOpenTDBClient(srv.URL, srv.Client())
	_, err := client.Fetch(context.Background(), 1, "", "")
	require.Error(t, err)
	assert.False(t, RateLimited(err))
}
