package ws

import (
	"artmarket/internal/redis/bidfeed"
	"artmarket/internal/services/auction"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 12 * time.Second
	pingPeriod     = 3 * time.Second // must be < pongWait
	maxMessageSize = 512
	dispatchWait   = 1900 * time.Millisecond
)

type subscriber interface {
	Subscribe(auctionID string)
	Unsubscribe(auctionID string)
}

type WsServer struct {
	hub        *Hub
	subs       subscriber
	router     *Router
	rdc        *redis.Client
	auctionSvc auction.IAuctionService
	upgrader   websocket.Upgrader
}

func NewWsServer(h *Hub, rdc *redis.Client, auctionSvc auction.IAuctionService) *WsServer {
	return newWsServer(h, newSubscriptionManager(rdc, h), rdc, auctionSvc)
}

func newWsServer(h *Hub, subs subscriber, rdc *redis.Client, auctionSvc auction.IAuctionService) *WsServer {
	srv := &WsServer{
		hub:        h,
		subs:       subs,
		router:     NewRouter(),
		rdc:        rdc,
		auctionSvc: auctionSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// storefront pages are served from other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	srv.registerHandlers()
	return srv
}

// @Summary		Live auction feed
// @Description	Upgrades to a websocket that streams auctions/snapshot, auctions/bid and auctions/ended events and accepts auctions/bid frames.
// @Tags			Auctions
// @Param			auction_id	query	string	true	"Auction ID"
// @Param			user_id		query	string	true	"Bidder ID"
// @Success		101
// @Failure		400	{object}	ErrorBody
// @Router			/ws [get]
func (s *WsServer) Handle(ginCtx *gin.Context) {
	auctionID := ginCtx.Query("auction_id")
	userID := ginCtx.Query("user_id")
	if auctionID == "" || userID == "" {
		ginCtx.JSON(http.StatusBadRequest, ErrorBody{Error: "auction_id and user_id are required"})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	conn := &clientConn{rawConn: rawConn}
	s.hub.Join(auctionID, userID, conn)
	s.subs.Subscribe(auctionID)

	if err := s.pushInitialSnapshot(ginCtx.Request.Context(), auctionID, conn); err != nil &&
		!errors.Is(err, auction.ErrAuctionNotFound) {
		zap.L().Warn("ws.snapshot", zap.String("auction_id", auctionID), zap.Error(err))
	}

	go s.reader(auctionID, userID, conn)
	go s.pinger(conn)
}

func (s *WsServer) registerHandlers() {
	Register(
		s.router,
		"auctions/bid",
		func(ctx context.Context, cc *ConnContext, req BidRequest) (BidAck, error) {
			if req.Amount <= 0 {
				return BidAck{}, errors.New("invalid_amount")
			}
			if err := s.auctionSvc.PlaceBid(ctx, cc.AuctionID, cc.UserID, req.Amount); err != nil {
				return BidAck{}, err
			}
			return BidAck{Success: true, NewPrice: req.Amount}, nil
		},
	)
}

// pushInitialSnapshot sends the live Redis snapshot if one exists, otherwise
// the auction row from Postgres.
func (s *WsServer) pushInitialSnapshot(ctx context.Context, id string, conn *clientConn) error {
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	if snap, _ := s.rdc.HGetAll(ctx, bidfeed.SnapshotKey(id)).Result(); len(snap) != 0 {
		return conn.writeJSON(gin.H{
			"event": "auctions/snapshot",
			"body":  snap,
		})
	}

	dto, err := s.auctionSvc.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	return conn.writeJSON(gin.H{
		"event": "auctions/snapshot",
		"body": gin.H{
			"hb":    strconv.FormatFloat(dto.CurrentBid, 'f', -1, 64),
			"hbid":  dto.WinningBidderID,
			"ea":    strconv.FormatInt(dto.EndTime.Unix(), 10),
			"ended": dto.Ended,
		},
	})
}

func (s *WsServer) reader(auctionID, userID string, conn *clientConn) {
	defer func() {
		s.hub.Leave(auctionID, conn)
		s.subs.Unsubscribe(auctionID)
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{AuctionID: auctionID, UserID: userID}

	for {
		var env Envelope
		if err := conn.rawConn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchWait)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: auction.UserMessage(err)},
			})
			continue
		}

		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		// fails once the reader has left the room and closed the conn
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
