package game

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/randomPoison/hangry-river-horse/internal/broadcast"
	"github.com/rs/zerolog/log"
)

const (
	defaultHighScores = 10
	maxHighScores     = 100
)

// Engine is the part of Game the HTTP layer drives.
type Engine interface {
	RegisterPlayer(now time.Time) PlayerData
	FeedPlayer(id PlayerId, now time.Time) (FeedResult, error)
	ListPlayers() []PlayerData
	GetPlayer(id PlayerId) (PlayerData, error)
	ResolveNoseGoes(id PlayerId) (NoseGoesResult, error)
	NoseGoesStatus() NoseGoesStatus
}

type GameHandler struct {
	engine   Engine
	archive  ScoreArchive
	hosts    *broadcast.Broadcaster[HostBroadcast]
	clients  *broadcast.Broadcaster[PlayerBroadcast]
	upgrader websocket.Upgrader
	clock    func() time.Time
}

// NewGameHandler wires the handlers. archive may be nil, which disables the
// high score route.
func NewGameHandler(engine Engine, archive ScoreArchive, hosts *broadcast.Broadcaster[HostBroadcast], clients *broadcast.Broadcaster[PlayerBroadcast], allowedOrigins []string) *GameHandler {
	return &GameHandler{
		engine:  engine,
		archive: archive,
		hosts:   hosts,
		clients: clients,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     OriginChecker(allowedOrigins),
		},
		clock: time.Now,
	}
}

type feedRequest struct {
	Id PlayerId `json:"id" binding:"required"`
}

func (h *GameHandler) RegisterPlayerHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.engine.RegisterPlayer(h.clock()))
}

func (h *GameHandler) FeedHandler(ctx *gin.Context) {
	req := feedRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	res, err := h.engine.FeedPlayer(req.Id, h.clock())
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *GameHandler) ListPlayersHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"players": h.engine.ListPlayers()})
}

func (h *GameHandler) GetPlayerHandler(ctx *gin.Context) {
	id, err := ParsePlayerId(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	player, err := h.engine.GetPlayer(id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, player)
}

func (h *GameHandler) NoseGoesHandler(ctx *gin.Context) {
	id, err := ParsePlayerId(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	res, err := h.engine.ResolveNoseGoes(id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *GameHandler) NoseGoesStatusHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.engine.NoseGoesStatus())
}

func (h *GameHandler) HighScoresHandler(ctx *gin.Context) {
	if h.archive == nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "archive-disabled"})
		return
	}

	limit := defaultHighScores
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
			return
		}
		limit = min(n, maxHighScores)
	}

	scores, err := h.archive.TopScores(ctx.Request.Context(), limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"scores": scores})
}

func (h *GameHandler) HostSocketHandler(ctx *gin.Context) {
	serveSubscription(ctx, &h.upgrader, "host", h.hosts)
}

func (h *GameHandler) PlayerSocketHandler(ctx *gin.Context) {
	serveSubscription(ctx, &h.upgrader, "player", h.clients)
}

func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMalformedPlayerId):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
	case errors.Is(err, ErrInvalidPlayer):
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": ErrInvalidPlayer.Error()})
	case errors.Is(err, ErrInvalidNoseGoes):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrInvalidNoseGoes.Error()})
	case errors.Is(err, ErrRateLimited):
		ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrRateLimited.Error()})
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Str("ip", ctx.ClientIP()).Msg("unexpected handler error")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
	}
}
