package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("aniguess", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 90 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "anidle", "screenshot", "theme", "character":
		handleGame(ctx, client, *baseURL, *tokenPath, cmd, sub, args[2:])
	case "search":
		handleSearch(ctx, client, *baseURL, args[1:])
	case "stats":
		handleStats(ctx, client, *baseURL, *tokenPath)
	case "watch":
		handleWatch(*baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: aniguess auth <login|register|logout>")
	}
}

// handleGame drives one game type. The same verbs work across all four;
// verbs a game does not support just 404.
func handleGame(ctx context.Context, client *http.Client, baseURL, tokenPath, game, sub string, args []string) {
	// play anonymously when no token is stored
	token, _ := readToken(tokenPath)
	base := baseURL + "/games/" + game

	switch sub {
	case "start":
		fs := flag.NewFlagSet(game+" start", flag.ExitOnError)
		difficulty := fs.String("difficulty", "normal", "easy|normal|hard|expert|crazy|insanity")
		kind := fs.String("kind", "op", "op|ed (theme only)")
		_ = fs.Parse(args)

		endpoint := base + "/start"
		if game == "theme" {
			endpoint = base + "/" + *kind + "/start"
		}
		payload := map[string]string{"difficulty": *difficulty}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, endpoint, token, payload, &resp); err != nil {
			log.Fatalf("start failed: %v", err)
		}
		printJSON(resp)
	case "guess":
		fs := flag.NewFlagSet(game+" guess", flag.ExitOnError)
		id := fs.String("game", "", "game id")
		name := fs.String("name", "", "anime name")
		character := fs.String("character", "", "character name (character only)")
		_ = fs.Parse(args)
		if *id == "" || *name == "" {
			log.Fatal("game and name are required")
		}

		payload := map[string]string{"anime_name": *name}
		if game == "character" {
			if *character == "" {
				log.Fatal("character is required")
			}
			payload["character_name"] = *character
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, base+"/"+url.PathEscape(*id)+"/guess", token, payload, &resp); err != nil {
			log.Fatalf("guess failed: %v", err)
		}
		printJSON(resp)
	case "hint":
		fs := flag.NewFlagSet(game+" hint", flag.ExitOnError)
		id := fs.String("game", "", "game id")
		kind := fs.String("type", "", "genre|year|studio|media_type|tag")
		_ = fs.Parse(args)
		if *id == "" || *kind == "" {
			log.Fatal("game and type are required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, base+"/"+url.PathEscape(*id)+"/hint", token, map[string]string{"hint_type": *kind}, &resp); err != nil {
			log.Fatalf("hint failed: %v", err)
		}
		printJSON(resp)
	case "reveal":
		id := requireGameID(game+" reveal", args)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, base+"/"+url.PathEscape(id)+"/reveal", token, nil, &resp); err != nil {
			log.Fatalf("reveal failed: %v", err)
		}
		printJSON(resp)
	case "navigate":
		fs := flag.NewFlagSet(game+" navigate", flag.ExitOnError)
		id := fs.String("game", "", "game id")
		stage := fs.Int("stage", 1, "stage to view")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("game is required")
		}

		var resp map[string]any
		endpoint := fmt.Sprintf("%s/%s/navigate/%d", base, url.PathEscape(*id), *stage)
		if err := doJSON(ctx, client, http.MethodPost, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("navigate failed: %v", err)
		}
		printJSON(resp)
	case "giveup":
		id := requireGameID(game+" giveup", args)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, base+"/"+url.PathEscape(id)+"/giveup", token, nil, &resp); err != nil {
			log.Fatalf("giveup failed: %v", err)
		}
		printJSON(resp)
	case "status":
		id := requireGameID(game+" status", args)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, base+"/"+url.PathEscape(id)+"/status", token, nil, &resp); err != nil {
			log.Fatalf("status failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatalf("usage: aniguess %s <start|guess|hint|reveal|navigate|giveup|status>", game)
	}
}

func requireGameID(name string, args []string) string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("game", "", "game id")
	_ = fs.Parse(args)
	if *id == "" {
		log.Fatal("game is required")
	}
	return *id
}

func handleSearch(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "search query")
	kind := fs.String("kind", "anime", "anime|character")
	limit := fs.Int("limit", 10, "max results")
	_ = fs.Parse(args)
	if *query == "" {
		log.Fatal("q is required")
	}

	path := "/games/anidle/search"
	if *kind == "character" {
		path = "/games/character/search"
	}
	u, err := url.Parse(baseURL + path)
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	qv := u.Query()
	qv.Set("q", *query)
	qv.Set("limit", fmt.Sprintf("%d", *limit))
	u.RawQuery = qv.Encode()

	var resp []map[string]any
	if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
		log.Fatalf("search failed: %v", err)
	}
	printJSON(resp)
}

func handleStats(ctx context.Context, client *http.Client, baseURL, tokenPath string) {
	token := mustToken(tokenPath)
	var resp map[string]any
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/me/stats", token, nil, &resp); err != nil {
		log.Fatalf("stats failed: %v", err)
	}
	printJSON(resp)
}

// handleWatch streams live game events over the websocket.
func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
	_ = fs.Parse(args)

	endpoint := *wsURL
	if endpoint == "" {
		var err error
		endpoint, err = websocketURL(baseURL, "/ws")
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Fatalf("watch failed: %v", err)
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", endpoint)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("watch closed: %v", err)
		}
		fmt.Println(string(msg))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.aniguess-token.json"
	}
	return filepath.Join(home, ".aniguess", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("aniguess <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  anidle start|guess|hint|giveup|status")
	fmt.Println("  screenshot start|guess|reveal|navigate|giveup|status")
	fmt.Println("  theme start|guess|reveal|giveup|status")
	fmt.Println("  character start|guess|giveup")
	fmt.Println("  search -q <query> [-kind anime|character]")
	fmt.Println("  stats")
	fmt.Println("  watch")
}
