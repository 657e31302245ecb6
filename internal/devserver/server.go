package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/pkg/config"
	"github.com/pdv-commerce/storefront/pkg/enums"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
	"github.com/pdv-commerce/storefront/pkg/security"
)

type contextKey string

const userIDKey contextKey = "devserver.user_id"

// Server is the local stand-in for the production marketplace API. It
// speaks the exact wire contract the client engine expects.
type Server struct {
	repo *Repository
	cfg  *config.Config
	logg *logger.Logger
	now  func() time.Time
}

func NewServer(repo *Repository, cfg *config.Config, logg *logger.Logger) (*Server, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository is required")
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "config is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Server{repo: repo, cfg: cfg, logg: logg, now: time.Now}, nil
}

// Handler builds the chi router with every marketplace route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
	)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.Get("/produtos", s.handleListProducts)
	r.Get("/produtos/{produtoID}", s.handleGetProduct)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Put("/produtos/{produtoID}/estoque", s.handleDecrementStock)

		r.Post("/pedidos", s.handleCreateOrder)
		r.Get("/pedidos", s.handleListOrders)
		r.Get("/pedidos/{pedidoID}", s.handleGetOrder)
		r.Put("/pedidos/{pedidoID}/status", s.handleUpdateOrderStatus)
		r.Put("/pedidos/{pedidoID}/confirmar-pagamento", s.handleConfirmPayment)

		r.Get("/conversas", s.handleListConversations)
		r.Post("/conversas", s.handleCreateConversation)
		r.Get("/conversas/{conversaID}/mensagens", s.handleListMessages)
		r.Post("/conversas/{conversaID}/mensagens", s.handleCreateMessage)
		r.Put("/conversas/{conversaID}/ler", s.handleMarkConversationRead)
		r.Get("/mensagens/nao-lidas", s.handleUnreadCount)
	})

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token inválido"))
			return
		}

		userID, err := parseToken(s.cfg.JWT, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "corpo inválido"))
		return
	}

	user, err := s.repo.UserByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Credenciais inválidas"))
		return
	}

	token, err := issueToken(s.cfg.JWT, user, s.now())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logg.Info(s.logg.WithUserID(r.Context(), user.ID), "login accepted")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"usuario": map[string]any{
			"usuario_id": user.ID,
			"nome":       user.Name,
			"email":      user.Email,
			"tipo":       user.Type,
		},
	})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var sellerID int64
	if raw := r.URL.Query().Get("empresa_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "empresa_id inválido"))
			return
		}
		sellerID = parsed
	}

	products, err := s.repo.Products(r.Context(), sellerID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	payload := make([]map[string]any, 0, len(products))
	for _, p := range products {
		payload = append(payload, productWire(p))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "produtoID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	product, err := s.repo.ProductByID(r.Context(), productID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, productWire(product))
}

func (s *Server) handleDecrementStock(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "produtoID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var req struct {
		Decrement int `json:"decremento"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Decrement < 1 {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "decremento inválido"))
		return
	}

	product, err := s.repo.DecrementStock(r.Context(), productID, req.Decrement)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, productWire(product))
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  int64           `json:"produto_id"`
		Quantity   int             `json:"quantidade"`
		UnitPrice  decimal.Decimal `json:"valor_unitario"`
		SellerID   int64           `json:"empresa_id"`
		Note       string          `json:"observacao"`
		DeliveryAt string          `json:"data_entrega"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "corpo inválido"))
		return
	}
	if req.ProductID <= 0 || req.Quantity < 1 {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "produto e quantidade são obrigatórios"))
		return
	}

	order := Order{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Note:       req.Note,
		CustomerID: userIDFrom(r.Context()),
		SellerID:   req.SellerID,
	}
	if req.DeliveryAt != "" {
		deliveryAt, err := time.Parse(time.RFC3339, req.DeliveryAt)
		if err != nil {
			s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "data_entrega inválida"))
			return
		}
		order.DeliveryAt = &deliveryAt
	}

	created, err := s.repo.CreateOrder(r.Context(), order)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, orderWire(created))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := OrderFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "status inválido"))
			return
		}
		filter.Status = status.String()
	}
	for param, target := range map[string]*int64{
		"produto_id": &filter.ProductID,
		"empresa_id": &filter.SellerID,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, param+" inválido"))
			return
		}
		*target = parsed
	}

	orders, err := s.repo.OrdersByCustomer(r.Context(), userIDFrom(r.Context()), filter)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	payload := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		payload = append(payload, orderWire(o))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "pedidoID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	order, err := s.repo.OrderByID(r.Context(), orderID, userIDFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, orderWire(order))
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "pedidoID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "corpo inválido"))
		return
	}

	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "status inválido"))
		return
	}

	if err := s.repo.UpdateOrderStatus(r.Context(), orderID, status); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status.String()})
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "pedidoID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.repo.ConfirmPayment(r.Context(), orderID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": enums.OrderStatusConfirmed.String()})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	conversations, err := s.repo.ConversationsByUser(r.Context(), userID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	payload := make([]map[string]any, 0, len(conversations))
	for _, c := range conversations {
		messages, err := s.repo.MessagesByConversation(r.Context(), c.ID)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}

		last := ""
		unread := 0
		for _, m := range messages {
			last = m.Body
			if !m.Read && m.SenderID != userID {
				unread++
			}
		}
		payload = append(payload, conversationWire(c, last, unread))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientID int64 `json:"destinatario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipientID <= 0 {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "destinatario_id é obrigatório"))
		return
	}

	conversation, created, err := s.repo.CreateConversation(r.Context(), userIDFrom(r.Context()), req.RecipientID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, conversationWire(conversation, "", 0))
}

func (s *Server) handleMarkConversationRead(w http.ResponseWriter, r *http.Request) {
	conversationID, err := pathID(r, "conversaID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if _, err := s.repo.ConversationByID(r.Context(), conversationID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.repo.MarkConversationRead(r.Context(), conversationID, userIDFrom(r.Context())); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"lida": true})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := pathID(r, "conversaID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if _, err := s.repo.ConversationByID(r.Context(), conversationID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	messages, err := s.repo.MessagesByConversation(r.Context(), conversationID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	payload := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, messageWire(m))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	conversationID, err := pathID(r, "conversaID")
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if _, err := s.repo.ConversationByID(r.Context(), conversationID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var req struct {
		Body string `json:"conteudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		s.writeError(r.Context(), w, pkgerrors.New(pkgerrors.CodeValidation, "conteúdo é obrigatório"))
		return
	}

	message, err := s.repo.CreateMessage(r.Context(), Message{
		ConversationID: conversationID,
		SenderID:       userIDFrom(r.Context()),
		Body:           req.Body,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, messageWire(message))
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.UnreadCount(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"total": count})
}

func productWire(p Product) map[string]any {
	return map[string]any{
		"produto_id":   p.ID,
		"nome":         p.Name,
		"descricao":    p.Description,
		"valor":        p.Price,
		"quantidade":   p.Quantity,
		"empresa_id":   p.SellerID,
		"empresa_nome": p.SellerName,
		"menu":         p.Menu,
		"imagem_url":   p.ImageURL,
	}
}

func orderWire(o Order) map[string]any {
	return map[string]any{
		"pedido_id":    o.ID,
		"produto_id":   o.ProductID,
		"produto_nome": o.ProductName,
		"quantidade":   o.Quantity,
		"valor_total":  o.Total,
		"status":       o.Status,
		"observacao":   o.Note,
		"cliente_nome": o.CustomerName,
		"empresa_id":   o.SellerID,
		"data_pedido":  o.CreatedAt,
	}
}

func conversationWire(c Conversation, lastMessage string, unread int) map[string]any {
	return map[string]any{
		"conversa_id":     c.ID,
		"empresa_id":      c.SellerID,
		"empresa_nome":    c.SellerName,
		"ultima_mensagem": lastMessage,
		"nao_lidas":       unread,
		"atualizada_em":   c.UpdatedAt,
	}
}

func messageWire(m Message) map[string]any {
	return map[string]any{
		"mensagem_id":    m.ID,
		"conversa_id":    m.ConversationID,
		"remetente_id":   m.SenderID,
		"remetente_nome": m.SenderName,
		"conteudo":       m.Body,
		"lida":           m.Read,
		"enviada_em":     m.SentAt,
	}
}

func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "identificador inválido")
	}
	return id, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logg.Error(context.Background(), "write response", err)
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	message := meta.PublicMessage
	if m := typed.Message(); m != "" && typed.Code() != pkgerrors.CodeInternal {
		message = m
	}

	if meta.HTTPStatus >= 500 {
		s.logg.Error(ctx, "request failed", err)
	}
	s.writeJSON(w, meta.HTTPStatus, map[string]string{"message": message})
}
