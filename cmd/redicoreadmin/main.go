// Command redicoreadmin is a small operator HTTP surface over the value
// engine: OBJECT/MEMORY introspection and blocked-client listing. It is
// tooling for operators, not a RESP-compatible wire protocol — command
// dispatch over the network stays outside this repository's scope.
package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kavinhq/redicore/internal/command"
	"github.com/kavinhq/redicore/internal/config"
	"github.com/kavinhq/redicore/internal/engine"
)

// zapLogger mirrors the teacher's gin middleware: structured request logs
// at a severity keyed off the response status.
func zapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		joinedErr := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if joinedErr != nil {
			fields = append(fields, zap.Error(joinedErr))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// adminCredentials holds the single operator account this surface
// authenticates against; REDICORE_ADMIN_USERNAME/PASSWORD override the
// development defaults, the same os.Getenv-or-default shape
// internal/config.FromEnv uses.
type adminCredentials struct {
	username string
	password string
}

func loadAdminCredentials() adminCredentials {
	c := adminCredentials{username: "admin", password: "redicore"}
	if v := os.Getenv("REDICORE_ADMIN_USERNAME"); v != "" {
		c.username = v
	}
	if v := os.Getenv("REDICORE_ADMIN_PASSWORD"); v != "" {
		c.password = v
	}
	return c
}

// authenticate accepts either a valid session or fresh Basic credentials,
// establishing a session on the latter so subsequent requests don't need
// to resend the password.
func authenticate(creds adminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if uid, _ := session.Get("uid").(string); uid != "" {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if ok && subtle.ConstantTimeCompare([]byte(user), []byte(creds.username)) == 1 &&
			subtle.ConstantTimeCompare([]byte(pass), []byte(creds.password)) == 1 {
			session.Set("uid", user)
			_ = session.Save()
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", `Basic realm="redicoreadmin"`)
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func dbIndexParam(c *gin.Context) int {
	idx, err := strconv.Atoi(c.DefaultQuery("db", "0"))
	if err != nil {
		return 0
	}
	return idx
}

func main() {
	logCfg := zap.NewProductionConfig()
	logCfg.EncoderConfig.TimeKey = ""
	logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	log := zap.Must(logCfg.Build())
	defer log.Sync()
	log = log.Named("redicoreadmin")

	cfg := config.FromEnv()
	eng := engine.New(log, &cfg)
	defer eng.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(gin.Recovery())
	r.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	}))
	if os.Getenv("ENV") == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(zapLogger(log))

	cookieSecret := []byte(os.Getenv("REDICORE_ADMIN_SESSION_SECRET"))
	if len(cookieSecret) == 0 {
		cookieSecret = []byte("dev-only-session-secret-change-me")
	}
	store := cookie.NewStore(cookieSecret)
	store.Options(sessions.Options{Path: "/api", MaxAge: 4 * 3600, HttpOnly: true, SameSite: http.SameSiteStrictMode})
	r.Use(sessions.Sessions("sid", store))

	creds := loadAdminCredentials()

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api", authenticate(creds))

	api.GET("/object/:key", func(c *gin.Context) {
		db := eng.DB(dbIndexParam(c))
		if db == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid db index"})
			return
		}
		cfg := config.Default()
		key := c.Param("key")

		refcount, _, err := command.Object(db, eng.Clock(), &cfg, command.ObjectRefcount, key)
		if err != nil {
			writeCommandError(c, err)
			return
		}
		_, encoding, _ := command.Object(db, eng.Clock(), &cfg, command.ObjectEncoding, key)
		typ := command.Type(db, eng.Clock(), key)

		c.JSON(http.StatusOK, gin.H{
			"key":      key,
			"type":     typ,
			"encoding": encoding,
			"refcount": refcount,
		})
	})

	api.GET("/memory/usage/:key", func(c *gin.Context) {
		db := eng.DB(dbIndexParam(c))
		if db == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid db index"})
			return
		}
		usage, err := command.MemoryUsage(db, eng.Clock(), c.Param("key"), 5)
		if err != nil {
			writeCommandError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "bytes": usage})
	})

	api.GET("/memory/stats", func(c *gin.Context) {
		report, err := command.MemoryStats(eng.MemoryAggregator())
		if err != nil {
			writeCommandError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	api.GET("/memory/doctor", func(c *gin.Context) {
		warnings, err := command.MemoryDoctor(eng.MemoryAggregator())
		if err != nil {
			writeCommandError(c, err)
			return
		}
		c.JSON(http.StatusOK, warnings)
	})

	api.GET("/blocked", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": eng.BlockManager().Count()})
	})

	httpserver := &http.Server{
		Addr:           "127.0.0.1:8090",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 15,
		ErrorLog:       zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}

	log.Info("running admin HTTP server on 127.0.0.1:8090")
	if err := httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
}

func writeCommandError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
}
