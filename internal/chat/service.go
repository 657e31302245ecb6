package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/pdv-commerce/storefront/internal/api"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// Conversation is one buyer-seller thread.
type Conversation struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
	LastMessage string    `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Message is one chat entry inside a conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	SentAt         time.Time `json:"sent_at"`
}

// Service talks to the marketplace chat endpoints.
type Service interface {
	Conversations(ctx context.Context) ([]Conversation, error)
	CreateConversation(ctx context.Context, recipientID int64) (Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]Message, error)
	Send(ctx context.Context, conversationID int64, body string) (Message, error)
	MarkRead(ctx context.Context, conversationID int64) error
	UnreadCount(ctx context.Context) (int, error)
}

type service struct {
	client *api.Client
	logg   *logger.Logger
}

func NewService(client *api.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{client: client, logg: logg}, nil
}

type rawConversation struct {
	ConversaID     int64     `json:"conversa_id"`
	EmpresaID      int64     `json:"empresa_id"`
	EmpresaNome    string    `json:"empresa_nome"`
	UltimaMensagem string    `json:"ultima_mensagem"`
	NaoLidas       int       `json:"nao_lidas"`
	AtualizadaEm   time.Time `json:"atualizada_em"`
}

func (r rawConversation) normalize() Conversation {
	return Conversation{
		ID:          r.ConversaID,
		SellerID:    r.EmpresaID,
		SellerName:  r.EmpresaNome,
		LastMessage: r.UltimaMensagem,
		UnreadCount: r.NaoLidas,
		UpdatedAt:   r.AtualizadaEm,
	}
}

type rawMessage struct {
	MensagemID  int64     `json:"mensagem_id"`
	ConversaID  int64     `json:"conversa_id"`
	RemetenteID int64     `json:"remetente_id"`
	Remetente   string    `json:"remetente_nome"`
	Conteudo    string    `json:"conteudo"`
	Lida        bool      `json:"lida"`
	EnviadaEm   time.Time `json:"enviada_em"`
}

func (r rawMessage) normalize() Message {
	return Message{
		ID:             r.MensagemID,
		ConversationID: r.ConversaID,
		SenderID:       r.RemetenteID,
		SenderName:     r.Remetente,
		Body:           r.Conteudo,
		Read:           r.Lida,
		SentAt:         r.EnviadaEm,
	}
}

func (s *service) Conversations(ctx context.Context) ([]Conversation, error) {
	var raw []rawConversation
	if err := s.client.Get(ctx, "/conversas", nil, &raw); err != nil {
		return nil, err
	}

	result := make([]Conversation, 0, len(raw))
	for _, r := range raw {
		result = append(result, r.normalize())
	}
	return result, nil
}

// CreateConversation opens a thread with a seller, or returns the
// existing one when the pair already talked.
func (s *service) CreateConversation(ctx context.Context, recipientID int64) (Conversation, error) {
	if recipientID <= 0 {
		return Conversation{}, pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}

	var raw rawConversation
	payload := map[string]int64{"destinatario_id": recipientID}
	if err := s.client.Post(ctx, "/conversas", payload, &raw); err != nil {
		return Conversation{}, err
	}
	return raw.normalize(), nil
}

func (s *service) Messages(ctx context.Context, conversationID int64) ([]Message, error) {
	if conversationID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation id is required")
	}

	var raw []rawMessage
	path := fmt.Sprintf("/conversas/%d/mensagens", conversationID)
	if err := s.client.Get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	result := make([]Message, 0, len(raw))
	for _, r := range raw {
		result = append(result, r.normalize())
	}
	return result, nil
}

func (s *service) Send(ctx context.Context, conversationID int64, body string) (Message, error) {
	if conversationID <= 0 {
		return Message{}, pkgerrors.New(pkgerrors.CodeValidation, "conversation id is required")
	}
	if body == "" {
		return Message{}, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}

	var raw rawMessage
	path := fmt.Sprintf("/conversas/%d/mensagens", conversationID)
	if err := s.client.Post(ctx, path, map[string]string{"conteudo": body}, &raw); err != nil {
		return Message{}, err
	}
	return raw.normalize(), nil
}

// MarkRead flags every message the other side sent in the conversation
// as read.
func (s *service) MarkRead(ctx context.Context, conversationID int64) error {
	if conversationID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "conversation id is required")
	}
	path := fmt.Sprintf("/conversas/%d/ler", conversationID)
	return s.client.Put(ctx, path, nil, nil)
}

func (s *service) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Total int `json:"total"`
	}
	if err := s.client.Get(ctx, "/mensagens/nao-lidas", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}
