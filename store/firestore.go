package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/mlevkov/duochat/contract"
	"github.com/mlevkov/duochat/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store on top of a Cloud Firestore client. The client
// is built once in main (through the Firebase app handle) and shared.
type Firestore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client, now: time.Now}
}

func (f *Firestore) Profile(ctx context.Context, uid string) (Profile, error) {
	doc, err := f.client.Collection(contract.UsersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("fetching profile %s: %w", uid, err)
	}

	var user contract.User
	if err := doc.DataTo(&user); err != nil {
		return Profile{}, fmt.Errorf("decoding profile %s: %w", uid, err)
	}
	return Profile{Email: user.Email, DisplayName: user.DisplayName}, nil
}

func (f *Firestore) SaveProfile(ctx context.Context, uid string, p Profile) error {
	_, err := f.client.Collection(contract.UsersCollection).Doc(uid).Set(
		ctx,
		contract.User{Email: p.Email, DisplayName: p.DisplayName},
		firestore.MergeAll,
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", uid, err)
	}
	return nil
}

func (f *Firestore) ProfileByDisplayName(ctx context.Context, name string) (string, Profile, error) {
	it := f.client.Collection(contract.UsersCollection).
		Where(contract.DisplayNameField, "==", name).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return "", Profile{}, ErrNotFound
	}
	if err != nil {
		return "", Profile{}, fmt.Errorf("querying profiles by display name: %w", err)
	}

	var user contract.User
	if err := doc.DataTo(&user); err != nil {
		return "", Profile{}, fmt.Errorf("decoding profile %s: %w", doc.Ref.ID, err)
	}
	return doc.Ref.ID, Profile{Email: user.Email, DisplayName: user.DisplayName}, nil
}

func (f *Firestore) Conversation(ctx context.Context, id string) (Conversation, error) {
	doc, err := f.client.Collection(contract.ChatsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("fetching conversation %s: %w", id, err)
	}
	return decodeConversation(doc.Ref.ID, doc.Data())
}

func (f *Firestore) ConversationsWith(ctx context.Context, uid string) ([]Conversation, error) {
	docs, err := f.conversationsQuery(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return decodeConversations(docs)
}

func (f *Firestore) CreateConversation(ctx context.Context, a, b string) (string, error) {
	ref, _, err := f.client.Collection(contract.ChatsCollection).Add(ctx, contract.Chat{
		Participants: []string{a, b},
	})
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}
	return ref.ID, nil
}

func (f *Firestore) SendMessage(ctx context.Context, conversationID string, m Message) error {
	_, _, err := f.messages(conversationID).Add(ctx, contract.Message{
		Text: m.Text,
		From: m.From,
		To:   m.To,
		// zero Timestamp: assigned by the server via the serverTimestamp tag
	})
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (f *Firestore) WatchConversations(ctx context.Context, uid string, fn func([]Conversation)) (CancelFunc, error) {
	return f.watch(ctx, f.conversationsQuery(uid), func(docs []*firestore.DocumentSnapshot) error {
		conversations, err := decodeConversations(docs)
		if err != nil {
			return err
		}
		fn(conversations)
		return nil
	})
}

func (f *Firestore) WatchMessages(ctx context.Context, conversationID string, fn func([]Message)) (CancelFunc, error) {
	query := f.messages(conversationID).OrderBy(contract.TimestampField, firestore.Asc)
	return f.watch(ctx, query, func(docs []*firestore.DocumentSnapshot) error {
		messages := make([]Message, 0, len(docs))
		for _, doc := range docs {
			m, err := decodeMessage(doc.Ref.ID, doc.Data(), f.now)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		fn(messages)
		return nil
	})
}

// watch runs a snapshot listener until cancelled. Every emission carries the
// complete result set. Listener failures are logged and end the subscription;
// the screen keeps its last state rather than showing an error (the UI then
// simply stops updating).
func (f *Firestore) watch(ctx context.Context, query firestore.Query, apply func([]*firestore.DocumentSnapshot) error) (CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	it := query.Snapshots(watchCtx)

	go func() {
		defer it.Stop()
		logger := log.LoggerFromContext(ctx)
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("snapshot listener failed", slog.String("errorMsg", err.Error()))
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("reading snapshot documents", slog.String("errorMsg", err.Error()))
				continue
			}
			if err := apply(docs); err != nil {
				logger.Error("decoding snapshot", slog.String("errorMsg", err.Error()))
				continue
			}
		}
	}()

	return CancelFunc(cancel), nil
}

func (f *Firestore) conversationsQuery(uid string) firestore.Query {
	return f.client.Collection(contract.ChatsCollection).
		Where(contract.ParticipantsField, "array-contains", uid)
}

func (f *Firestore) messages(conversationID string) *firestore.CollectionRef {
	return f.client.Collection(contract.ChatsCollection).
		Doc(conversationID).
		Collection(contract.MessagesCollection)
}

func decodeConversations(docs []*firestore.DocumentSnapshot) ([]Conversation, error) {
	conversations := make([]Conversation, 0, len(docs))
	for _, doc := range docs {
		conv, err := decodeConversation(doc.Ref.ID, doc.Data())
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}
