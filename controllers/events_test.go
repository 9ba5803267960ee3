package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// closeNotifyRecorder makes httptest.ResponseRecorder satisfy
// http.CloseNotifier, which gin's Context.Stream requires.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStreamEvents(t *testing.T) {
	env := setupTestEnv(t)
	services.InitEventHub(env.DB)

	r := gin.New()
	r.Use(utils.AuthMiddleware())
	r.GET("/api/events/stream", StreamEvents)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+env.Token)
	w := &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	// The handler subscribes shortly after the request starts; keep
	// publishing until the stream has had a chance to pick one up.
	otherShop := uuid.New()
	for i := 0; i < 20; i++ {
		services.PublishChange(env.Shop.ID, "customers", models.EventActionInsert,
			uuid.New(), gin.H{"name": "Yasmin"})
		services.PublishChange(otherShop, "customers", models.EventActionInsert,
			uuid.New(), gin.H{"name": "Elsewhere"})
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not stop after disconnect")
	}

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event:change")
	assert.Contains(t, body, "Yasmin")
	assert.NotContains(t, body, "Elsewhere", "events stay shop scoped")
}
