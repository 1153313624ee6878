package main

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "replydesk_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "REPLYDESK_WEB_PORT"
	envAPIURL   = "REPLYDESK_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/logout", logout(apiBase))

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/", generateForm(apiBase))
		r.Post("/generate", generateSubmit(apiBase))
		r.Get("/users", usersList(apiBase))
		r.Post("/users", userCreate(apiBase))
	})

	log.Printf("ReplyDesk web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireAuth redirects to /login if the cookie is missing or if the API
// rejects the token (expired, revoked, tampered).
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(cookieName)
			if err != nil || token.Value == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			_, status, _ := apiGet(apiBase, "/auth/me", token.Value)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", nil)
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Utilizador e palavra-passe são obrigatórios"})
			return
		}

		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		data, status, err := apiPost(apiBase, "/auth/login", "", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "login.html", map[string]string{"Error": msg})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/"
		}

		// Session cookie with no MaxAge. The token lifetime is the API's
		// business; requireAuth drops the cookie as soon as the API says 401.
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.Token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func logout(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Revoke server-side before dropping the cookie.
		if token, err := r.Cookie(cookieName); err == nil && token.Value != "" {
			_, _, _ = apiPost(apiBase, "/auth/logout", token.Value, nil)
		}
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login with next=current path.
// Call when the API returns 401 (expired or invalid token) so the user can sign in again.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// apiGet performs GET to API with token from request cookie.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("GET", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPost performs POST to API with token and JSON body.
func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("POST", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// catalog mirrors the /v1/options response.
type catalog struct {
	Intents []option `json:"intents"`
	Tones   []option `json:"tones"`
	Lengths []option `json:"lengths"`
}

type option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func fetchCatalog(apiBase string) (catalog, error) {
	var c catalog
	data, status, err := apiGet(apiBase, "/v1/options", "")
	if err != nil {
		return c, err
	}
	if status != http.StatusOK {
		return c, err
	}
	err = json.Unmarshal(data, &c)
	return c, err
}

func cookieToken(r *http.Request) string {
	token, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token.Value
}

func generateForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := fetchCatalog(apiBase)
		if err != nil {
			renderTemplate(w, "generate.html", map[string]interface{}{"Catalog": cat, "CustomerEmail": "", "ManagerNote": "", "Error": "Cannot reach API: " + err.Error()})
			return
		}
		renderTemplate(w, "generate.html", map[string]interface{}{"Catalog": cat, "CustomerEmail": "", "ManagerNote": ""})
	}
}

func generateSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("customer_email"))
		intents := r.Form["intents"]
		payload := map[string]interface{}{
			"customer_email": email,
			"intents":        intents,
			"tone":           r.FormValue("tone"),
			"length":         r.FormValue("length"),
			"manager_note":   r.FormValue("manager_note"),
		}

		cat, _ := fetchCatalog(apiBase)
		view := map[string]interface{}{
			"Catalog":       cat,
			"CustomerEmail": email,
			"ManagerNote":   r.FormValue("manager_note"),
		}

		if email == "" {
			view["Error"] = "Por favor escreve um email"
			renderTemplate(w, "generate.html", view)
			return
		}
		if len(intents) == 0 {
			view["Error"] = "Escolhe pelo menos um tipo de resposta"
			renderTemplate(w, "generate.html", view)
			return
		}

		body, _ := json.Marshal(payload)
		data, status, err := apiPost(apiBase, "/v1/generate", cookieToken(r), body)
		if err != nil {
			view["Error"] = "Cannot reach API: " + err.Error()
			renderTemplate(w, "generate.html", view)
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			view["Error"] = msg
			renderTemplate(w, "generate.html", view)
			return
		}

		var out struct {
			Reply string `json:"reply"`
			Model string `json:"model"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			view["Error"] = "Invalid generate response"
			renderTemplate(w, "generate.html", view)
			return
		}

		view["Reply"] = out.Reply
		view["Model"] = out.Model
		renderTemplate(w, "generate.html", view)
	}
}

func usersList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiGet(apiBase, "/v1/users", cookieToken(r))
		if err != nil {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status == http.StatusForbidden {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": "Apenas administradores podem gerir utilizadores"})
			return
		}

		var out struct {
			Users []struct {
				Username    string `json:"username"`
				DisplayName string `json:"display_name"`
				Role        string `json:"role"`
			} `json:"users"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": "Invalid users response"})
			return
		}
		renderTemplate(w, "users.html", map[string]interface{}{"Users": out.Users})
	}
}

func userCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		body, _ := json.Marshal(map[string]string{
			"username":     strings.TrimSpace(r.FormValue("username")),
			"password":     r.FormValue("password"),
			"display_name": strings.TrimSpace(r.FormValue("display_name")),
			"role":         r.FormValue("role"),
		})
		data, status, err := apiPost(apiBase, "/v1/users", cookieToken(r), body)
		if err != nil {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusCreated {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "users.html", map[string]interface{}{"Error": msg})
			return
		}

		http.Redirect(w, r, "/users", http.StatusFound)
	}
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if name == "login.html" {
		t := template.Must(template.New("").Parse(string(content)))
		_ = t.ExecuteTemplate(w, "login", data)
		return
	}

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}
