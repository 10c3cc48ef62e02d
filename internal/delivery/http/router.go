package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferenceqa/internal/delivery/http/controllers"
)

// Controllers groups everything the router dispatches to.
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Conference *controllers.ConferenceController
	Question   *controllers.QuestionController
	Health     *controllers.HealthController
	Live       http.Handler
}

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps handlers that need an authenticated organizer.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /users/me", requireAuth(c.User.GetMe))

	// Conferences
	mux.HandleFunc("GET /conferences", c.Conference.ListConferences)
	mux.HandleFunc("POST /conferences", requireAuth(c.Conference.CreateConference))
	mux.HandleFunc("GET /conferences/mine", requireAuth(c.Conference.ListMyConferences))
	mux.HandleFunc("GET /conferences/{slug}", c.Conference.GetConference)
	mux.HandleFunc("PATCH /conferences/{conferenceID}", requireAuth(c.Conference.UpdateConference))
	mux.HandleFunc("DELETE /conferences/{conferenceID}", requireAuth(c.Conference.DeleteConference))
	mux.Handle("GET /conferences/{slug}/live", c.Live)

	// Questions
	mux.HandleFunc("POST /questions", c.Question.CreateQuestion)
	mux.HandleFunc("GET /questions", c.Question.ListQuestions)
	mux.HandleFunc("DELETE /questions/{questionID}", requireAuth(c.Question.DeleteQuestion))

	mux.HandleFunc("GET /health", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

