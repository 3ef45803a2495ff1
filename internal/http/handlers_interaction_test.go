package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicaapp/backend/internal/models"
)

func TestQuestionQuota(t *testing.T) {
	router, env := newTestApp(t)
	owner, _ := seedUser(t, env, "a@x.com", "12345678909", "user")
	hint := seedHint(t, env, owner.ID, "ask away")

	for i := 0; i < models.MaxInteractionsPerHint; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": "q"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": "one too many"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The cap counts total interactions, answered or not: answering does
	// not free a slot.
	var firstPending models.Interaction
	require.NoError(t, env.DB.Where("hint_id = ?", hint.ID).Order("created_at asc").First(&firstPending).Error)
	ownerToken, err := env.JWT.Sign(owner.ID, owner.Name, owner.Email, owner.Role)
	require.NoError(t, err)
	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{
		"interactionId": firstPending.ID, "answer": "me",
	}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": "still too many"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionHintNotFound(t *testing.T) {
	router, _ := newTestApp(t)
	w := doJSON(t, router, http.MethodPost, "/api/hint/nope/question", map[string]any{"question": "q"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnswerByID(t *testing.T) {
	router, env := newTestApp(t)
	owner, token := seedUser(t, env, "a@x.com", "12345678909", "user")
	hint := seedHint(t, env, owner.ID, "hint")

	for _, q := range []string{"first?", "second?"} {
		w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": q}, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	var interactions []models.Interaction
	require.NoError(t, env.DB.Where("hint_id = ?", hint.ID).Order("created_at asc").Find(&interactions).Error)
	require.Len(t, interactions, 2)

	// Address the second question explicitly; the first stays pending.
	w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{
		"interactionId": interactions[1].ID, "answer": "the second one",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	listed := doJSON(t, router, http.MethodGet, "/api/hint/"+hint.ID+"/interactions", nil, token)
	require.Equal(t, http.StatusOK, listed.Code)
	out := decodeList(t, listed)
	require.Len(t, out, 2)
	assert.Nil(t, out[0]["answer"])
	assert.Equal(t, "the second one", out[1]["answer"])
	assert.NotNil(t, out[1]["answeredAt"])

	// The pending->answered transition happens once.
	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{
		"interactionId": interactions[1].ID, "answer": "again",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{
		"interactionId": "no-such-interaction", "answer": "x",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnswerFIFOFallback(t *testing.T) {
	router, env := newTestApp(t)
	owner, token := seedUser(t, env, "a@x.com", "12345678909", "user")
	hint := seedHint(t, env, owner.ID, "hint")

	for _, q := range []string{"oldest?", "newest?"} {
		w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": q}, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	// No interactionId: the oldest pending question is answered.
	w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{"answer": "for the oldest"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var interactions []models.Interaction
	require.NoError(t, env.DB.Where("hint_id = ?", hint.ID).Order("created_at asc").Find(&interactions).Error)
	require.Len(t, interactions, 2)
	require.NotNil(t, interactions[0].Answer)
	assert.Equal(t, "for the oldest", *interactions[0].Answer)
	assert.Nil(t, interactions[1].Answer)

	// Drain the remaining question, then answering again is a 400.
	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{"answer": "for the newest"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{"answer": "nothing left"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerAuthorization(t *testing.T) {
	router, env := newTestApp(t)
	owner, _ := seedUser(t, env, "a@x.com", "12345678909", "user")
	_, strangerToken := seedUser(t, env, "b@x.com", "98765432100", "user")
	_, adminToken := seedUser(t, env, "admin@x.com", "45678912300", "admin")
	hint := seedHint(t, env, owner.ID, "hint")

	w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": "q"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{"answer": "not mine"}, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/answer", map[string]any{"answer": "admin may"}, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/nope/answer", map[string]any{"answer": "x"}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListInteractionsGated(t *testing.T) {
	router, env := newTestApp(t)
	owner, ownerToken := seedUser(t, env, "a@x.com", "12345678909", "user")
	_, strangerToken := seedUser(t, env, "b@x.com", "98765432100", "user")
	hint := seedHint(t, env, owner.ID, "hint")

	for _, q := range []string{"one", "two", "three"} {
		w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/question", map[string]any{"question": q}, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/hint/"+hint.ID+"/interactions", nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/hint/"+hint.ID+"/interactions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/hint/"+hint.ID+"/interactions", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeList(t, w)
	require.Len(t, out, 3)
	assert.Equal(t, "one", out[0]["question"])
	assert.Equal(t, "two", out[1]["question"])
	assert.Equal(t, "three", out[2]["question"])

	w = doJSON(t, router, http.MethodGet, "/api/hint/nope/interactions", nil, ownerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplies(t *testing.T) {
	router, env := newTestApp(t)
	owner, _ := seedUser(t, env, "a@x.com", "12345678909", "user")
	hint := seedHint(t, env, owner.ID, "hint with replies")

	w := doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/reply", map[string]any{
		"content": "is this about me?", "fromRecipient": true,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/reply", map[string]any{
		"content": "yes", "fromRecipient": false,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/"+hint.ID+"/reply", map[string]any{"content": "missing flag"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/hint/nope/reply", map[string]any{
		"content": "x", "fromRecipient": true,
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/hint/"+hint.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	replies := decodeBody(t, w)["replies"].([]any)
	require.Len(t, replies, 2)
	first := replies[0].(map[string]any)
	second := replies[1].(map[string]any)
	assert.Equal(t, "is this about me?", first["content"])
	assert.Equal(t, true, first["fromRecipient"])
	assert.Equal(t, "yes", second["content"])
	assert.Equal(t, false, second["fromRecipient"])
}
