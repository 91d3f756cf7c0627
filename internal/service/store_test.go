package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/repository"
	"secondhand_market/pkg/logger"
)

// memStore is an in-memory stand-in for the database. WithinTx serializes
// transactions and restores a snapshot when fn fails.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	now    time.Time
	nextID int64

	listings      map[int64]domain.Listing
	images        map[int64]string
	profiles      map[uuid.UUID]domain.UserProfile
	rooms         map[int64]domain.ChatRoom
	messages      map[int64]domain.Message
	offers        map[int64]domain.PriceOffer
	notifications map[int64]domain.Notification
	audits        []domain.AuditLog

	failNotification error
}

func newMemStore() *memStore {
	return &memStore{
		now:           time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		listings:      map[int64]domain.Listing{},
		images:        map[int64]string{},
		profiles:      map[uuid.UUID]domain.UserProfile{},
		rooms:         map[int64]domain.ChatRoom{},
		messages:      map[int64]domain.Message{},
		offers:        map[int64]domain.PriceOffer{},
		notifications: map[int64]domain.Notification{},
	}
}

type memSnapshot struct {
	nextID        int64
	rooms         map[int64]domain.ChatRoom
	messages      map[int64]domain.Message
	offers        map[int64]domain.PriceOffer
	notifications map[int64]domain.Notification
	audits        []domain.AuditLog
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextID:        s.nextID,
		rooms:         copyMap(s.rooms),
		messages:      copyMap(s.messages),
		offers:        copyMap(s.offers),
		notifications: copyMap(s.notifications),
		audits:        append([]domain.AuditLog(nil), s.audits...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.rooms = snap.rooms
	s.messages = snap.messages
	s.offers = snap.offers
	s.notifications = snap.notifications
	s.audits = snap.audits
}

func (s *memStore) WithinTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repositories()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		ChatRoom:     memChatRooms{s},
		Message:      memMessages{s},
		Offer:        memOffers{s},
		Notification: memNotifications{s},
		Listing:      memListings{s},
		User:         memUsers{s},
		Audit:        memAudit{s},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) addListing(l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

func (s *memStore) addProfile(id uuid.UUID, nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = domain.UserProfile{ID: id, Nickname: nickname}
}

func (s *memStore) roomMessages(roomID int64) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.ChatRoomID == roomID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) room(id int64) domain.ChatRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

func (s *memStore) userNotifications(userID uuid.UUID) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memChatRooms struct{ s *memStore }

func (r memChatRooms) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repository.ErrChatRoomNotFound
	}
	return &room, nil
}

func (r memChatRooms) GetByListingAndBuyer(ctx context.Context, listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(listingID, buyerID)
}

func (r memChatRooms) find(listingID int64, buyerID uuid.UUID) (*domain.ChatRoom, error) {
	for _, room := range r.s.rooms {
		if room.ListingID != nil && *room.ListingID == listingID && room.BuyerID == buyerID {
			room := room
			return &room, nil
		}
	}
	return nil, repository.ErrChatRoomNotFound
}

func (r memChatRooms) CreateIfAbsent(ctx context.Context, room *domain.ChatRoom) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if room.BuyerID == room.SellerID {
		return false, repository.ErrSelfChat
	}
	if existing, err := r.find(*room.ListingID, room.BuyerID); err == nil {
		*room = *existing
		return false, nil
	}
	room.ID = r.s.id()
	room.CreatedAt = r.s.tick()
	r.s.rooms[room.ID] = *room
	return true, nil
}

func (r memChatRooms) UpdateSummary(ctx context.Context, roomID int64, summary string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return nil
	}
	if room.LastMessageAt == nil || !room.LastMessageAt.After(at) {
		room.LastMessage = &summary
		room.LastMessageAt = &at
		r.s.rooms[roomID] = room
	}
	return nil
}

func (r memChatRooms) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ChatRoomListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]*domain.ChatRoomListItem, 0)
	for _, room := range r.s.rooms {
		if !room.IsParticipant(userID) {
			continue
		}
		other := r.s.profiles[room.Counterpart(userID)]
		other.ID = room.Counterpart(userID)
		item := &domain.ChatRoomListItem{ChatRoom: room, OtherUser: &other}
		for _, m := range r.s.messages {
			if m.ChatRoomID == room.ID && m.SenderID != userID && !m.IsRead {
				item.UnreadCount++
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

type memMessages struct{ s *memStore }

func (r memMessages) Create(ctx context.Context, m *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	m.CreatedAt = r.s.tick()
	r.s.messages[m.ID] = *m
	return nil
}

func (r memMessages) UpdateContent(ctx context.Context, id int64, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return repository.ErrMessageNotFound
	}
	m.Content = content
	r.s.messages[id] = m
	return nil
}

func (r memMessages) ListByRoom(ctx context.Context, roomID int64) ([]*domain.Message, error) {
	msgs := r.s.roomMessages(roomID)
	out := make([]*domain.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, &msgs[i])
	}
	return out, nil
}

func (r memMessages) MarkRead(ctx context.Context, roomID int64, readerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.messages {
		if m.ChatRoomID == roomID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			r.s.messages[id] = m
			n++
		}
	}
	return n, nil
}

type memOffers struct{ s *memStore }

func (r memOffers) Create(ctx context.Context, o *domain.PriceOffer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.offers {
		if existing.ListingID == o.ListingID && existing.BuyerID == o.BuyerID && existing.Status == domain.OfferStatusPending {
			return repository.ErrPendingOfferExists
		}
	}
	o.ID = r.s.id()
	o.Status = domain.OfferStatusPending
	o.CreatedAt = r.s.tick()
	r.s.offers[o.ID] = *o
	return nil
}

func (r memOffers) GetByID(ctx context.Context, id int64) (*domain.PriceOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	return &o, nil
}

func (r memOffers) Resolve(ctx context.Context, id int64, status domain.OfferStatus) (*domain.PriceOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok || o.Status != domain.OfferStatusPending {
		return nil, repository.ErrOfferNotPending
	}
	at := r.s.tick()
	o.Status = status
	o.RespondedAt = &at
	r.s.offers[id] = o
	return &o, nil
}

type memNotifications struct{ s *memStore }

func (r memNotifications) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotification != nil {
		return r.s.failNotification
	}
	n.ID = r.s.id()
	n.CreatedAt = r.s.tick()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	list := r.s.userNotifications(userID)
	out := make([]*domain.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, &list[i])
	}
	return out, nil
}

func (r memNotifications) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotificationNotFound
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return &n, nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

type memListings struct{ s *memStore }

func (r memListings) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	return &l, nil
}

func (r memListings) GetSummary(ctx context.Context, id int64) (*domain.ListingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	summary := &domain.ListingSummary{ID: l.ID, Title: l.Title, Price: l.Price, IsFree: l.IsFree, Status: l.Status}
	if url, ok := r.s.images[id]; ok {
		summary.ThumbnailURL = &url
	}
	return summary, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) GetProfile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &p, nil
}

type memAudit struct{ s *memStore }

func (r memAudit) CreateLog(ctx context.Context, l *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.id()
	r.s.audits = append(r.s.audits, *l)
	return nil
}

type published struct {
	channel string
	event   domain.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{channel: channel, event: event})
	return nil
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// fixture is a seller with one listing open for offers and a buyer.
type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	chat      ChatService
	offers    OfferService
	seller    uuid.UUID
	buyer     uuid.UUID
	listingID int64
}

func newFixture() *fixture {
	store := newMemStore()
	publisher := &recordingPublisher{}
	log := logger.NewNop()
	repos := store.repositories()
	pipeline := newMessagePipeline(publisher, log)
	chat := NewChatService(repos, store, pipeline, log)

	f := &fixture{
		store:     store,
		publisher: publisher,
		chat:      chat,
		offers:    NewOfferService(repos, store, chat, pipeline, log),
		seller:    uuid.New(),
		buyer:     uuid.New(),
		listingID: 100,
	}
	price := 50000
	store.addListing(domain.Listing{
		ID: f.listingID, SellerID: f.seller, Title: "자전거", Price: &price,
		Status: domain.ListingStatusSale, AllowOffer: true,
	})
	store.addProfile(f.seller, "판매왕")
	store.addProfile(f.buyer, "철수")
	return f
}
