package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskpro/internal/auth"
	"taskpro/internal/middleware"
	"taskpro/internal/models"
	"taskpro/internal/repository"
	"taskpro/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// one-shot CSRF nonce between signin and callback
	stateTTL   = 10 * time.Minute
	sessionTTL = 24 * time.Hour
)

// UserStore resolves identities coming back from the OAuth provider.
type UserStore interface {
	UpsertFromOAuth(p repository.OAuthProfile) (models.User, error)
	GetByID(id string) (models.User, error)
}

type AuthHandler struct {
	Users  UserStore
	Redis  *redis.Client
	OAuth  *oauth2.Config
	Secret []byte

	// ProfileURL is the provider endpoint that returns the authenticated
	// user's profile. Overridable so tests can point it at a stub.
	ProfileURL string
}

func NewAuthHandler(users UserStore, rdb *redis.Client, oauthCfg *oauth2.Config, secret []byte) *AuthHandler {
	return &AuthHandler{
		Users:      users,
		Redis:      rdb,
		OAuth:      oauthCfg,
		Secret:     secret,
		ProfileURL: "https://api.github.com/user",
	}
}

// SignIn starts the handshake: stores a state nonce with the requested
// callbackUrl, then sends the browser to the provider's consent page.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	callbackURL := c.Query("callbackUrl", "/")
	state := uuid.NewString()

	if err := h.Redis.Set(c.Context(), "oauth_state:"+state, callbackURL, stateTTL).Err(); err != nil {
		logger.ErrorLogger.Error("Error storing oauth state", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error starting sign in",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Sign in started", zap.String("callback_url", callbackURL))
	return c.Redirect(h.OAuth.AuthCodeURL(state), fiber.StatusFound)
}

// Callback finishes the handshake: verifies the state nonce, exchanges
// the code, fetches the provider profile, upserts the user and issues the
// session cookie before sending the browser back where it wanted to go.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		logger.SecurityLogger.Warn("OAuth callback missing state or code")
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid callback request",
			"success": false,
			"status":  400,
		})
	}

	callbackURL, err := h.Redis.Get(c.Context(), "oauth_state:"+state).Result()
	if err != nil {
		logger.SecurityLogger.Warn("Unknown oauth state", zap.String("state", state))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid or expired state",
			"success": false,
			"status":  400,
		})
	}
	h.Redis.Del(c.Context(), "oauth_state:"+state)

	token, err := h.OAuth.Exchange(c.Context(), code)
	if err != nil {
		logger.ErrorLogger.Error("Error exchanging oauth code", zap.Error(err))
		return c.Status(502).JSON(fiber.Map{
			"message": "Error completing sign in",
			"success": false,
			"status":  502,
		})
	}

	profile, err := h.fetchProfile(token)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching provider profile", zap.Error(err))
		return c.Status(502).JSON(fiber.Map{
			"message": "Error completing sign in",
			"success": false,
			"status":  502,
		})
	}

	user, err := h.Users.UpsertFromOAuth(profile)
	if err != nil {
		logger.ErrorLogger.Error("Error upserting user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error completing sign in",
			"success": false,
			"status":  500,
		})
	}

	sessionToken, err := auth.IssueToken(h.Secret, user, sessionTTL)
	if err != nil {
		logger.ErrorLogger.Error("Error issuing session token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error completing sign in",
			"success": false,
			"status":  500,
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    sessionToken,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	// Only follow same-site destinations out of the state record.
	if !strings.HasPrefix(callbackURL, "/") || strings.HasPrefix(callbackURL, "//") {
		callbackURL = "/"
	}
	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID))
	return c.Redirect(callbackURL, fiber.StatusFound)
}

// Session reports who the current credential belongs to, or a null user
// for anonymous callers. It never fails the request.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	tokenString := middleware.CredentialFromRequest(c)
	if tokenString == "" {
		return c.JSON(fiber.Map{"user": nil})
	}
	sess, err := auth.ParseToken(h.Secret, tokenString)
	if err != nil {
		return c.JSON(fiber.Map{"user": nil})
	}

	user, err := h.Users.GetByID(sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(fiber.Map{"user": nil})
		}
		logger.ErrorLogger.Error("Error fetching session user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching session",
			"success": false,
			"status":  500,
		})
	}

	var image interface{}
	if user.Image.Valid {
		image = user.Image.String
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"image": image,
		},
	})
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	logger.AuditLogger.Info("Signed out")
	return c.SendStatus(204)
}

func (h *AuthHandler) fetchProfile(token *oauth2.Token) (repository.OAuthProfile, error) {
	client := h.OAuth.Client(context.Background(), token)
	resp, err := client.Get(h.ProfileURL)
	if err != nil {
		return repository.OAuthProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return repository.OAuthProfile{}, errors.New("provider returned " + strconv.Itoa(resp.StatusCode))
	}

	var ghUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return repository.OAuthProfile{}, err
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}
	email := ghUser.Email
	if email == "" {
		// GitHub hides the email for some accounts
		email = ghUser.Login + "@users.noreply.github.com"
	}
	return repository.OAuthProfile{
		Provider:          "github",
		ProviderAccountID: strconv.FormatInt(ghUser.ID, 10),
		Name:              name,
		Email:             email,
		Image:             ghUser.AvatarURL,
	}, nil
}
