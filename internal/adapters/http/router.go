package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"voicerooms/internal/adapters/signal"
	"voicerooms/internal/app"
	"voicerooms/internal/config"
	"voicerooms/internal/domain"
)

// ClientTokenMiddleware pins a browser to a stable token cookie. The
// token is informational (logging, session affinity); connection ids are
// minted per socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoiceroomSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctl := signal.NewController(coord, cfg)

	api := r.Group("/api")
	api.GET("/ws", ctl.HandleWS)
	api.GET("/health", healthHandler(coord.Rooms))
	api.GET("/rooms/:id", roomHandler(coord.Rooms))
	api.GET("/ice-servers", iceServersHandler(cfg))

	return r
}

func healthHandler(rooms *app.RoomStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomCount, memberCount := rooms.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"rooms":   roomCount,
			"members": memberCount,
		})
	}
}

func roomHandler(rooms *app.RoomStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := domain.RoomID(c.Param("id"))
		count, ok := rooms.MemberCount(id)
		c.JSON(http.StatusOK, gin.H{
			"exists":  ok,
			"members": count,
		})
	}
}

// iceServersHandler hands clients the STUN list so front-ends need not
// hardcode it.
func iceServersHandler(cfg *config.Config) gin.HandlerFunc {
	servers := []webrtc.ICEServer{{URLs: cfg.StunURLs}}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	}
}
