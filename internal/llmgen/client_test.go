package llmgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robogen/internal/model"
)

func testOp() *model.OperationModel {
	return &model.OperationModel{
		Name:        "deploy",
		Description: "Deploy the service",
		Arguments: []model.OperationArgument{
			{Name: "target", Required: true, Type: model.TypeString},
		},
		EnvVars:    []string{"DEPLOY_API_KEY"},
		SourceText: "def main():\n    pass\n",
	}
}

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGenerateSendsChatRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(chatReply("*** Settings ***\nsuite body")))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
	out, err := c.Generate(context.Background(), testOp())
	require.NoError(t, err)

	assert.Equal(t, "*** Settings ***\nsuite body", out)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "deploy")
	assert.Contains(t, gotReq.Messages[1].Content, "DEPLOY_API_KEY")
}

func TestGenerateStripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatReply("```robotframework\n*** Settings ***\nbody\n```")))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	out, err := c.Generate(context.Background(), testOp())
	require.NoError(t, err)
	assert.Equal(t, "*** Settings ***\nbody", out)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "bad", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), testOp())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatReply("   ")))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), testOp())
	assert.Error(t, err)
}

func TestNameDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	c := New(Options{})
	assert.Equal(t, "gpt-4o", c.Name())
	assert.Equal(t, defaultBaseURL, c.baseURL)

	c = New(Options{Model: "llama3", BaseURL: "http://localhost:11434/v1/"})
	assert.Equal(t, "llama3", c.Name())
	assert.Equal(t, "http://localhost:11434/v1", c.baseURL)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"```\nbody\n```", "body"},
		{"```robot\nbody\n```", "body"},
		{"```robot\nline1\nline2\n```\n", "line1\nline2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFences(tt.in), tt.in)
	}
}
