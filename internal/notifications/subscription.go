package notifications

const eventBufferSize = 32

// Subscription provides event channels for a subscriber.
type Subscription struct {
	Notified  <-chan NotifiedEvent
	NewPopup  <-chan PopupEvent
	Closed    <-chan ClosedEvent
	Dismissed <-chan DismissedEvent
	Done      <-chan struct{}

	notifiedCh  chan NotifiedEvent
	popupCh     chan PopupEvent
	closedCh    chan ClosedEvent
	dismissedCh chan DismissedEvent
	doneCh      chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		notifiedCh:  make(chan NotifiedEvent, eventBufferSize),
		popupCh:     make(chan PopupEvent, eventBufferSize),
		closedCh:    make(chan ClosedEvent, eventBufferSize),
		dismissedCh: make(chan DismissedEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.Notified = s.notifiedCh
	s.NewPopup = s.popupCh
	s.Closed = s.closedCh
	s.Dismissed = s.dismissedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// Sends never block the registry: a subscriber that falls behind loses events.

func (s *Subscription) sendNotified(e NotifiedEvent) {
	select {
	case s.notifiedCh <- e:
	default:
	}
}

func (s *Subscription) sendPopup(e PopupEvent) {
	select {
	case s.popupCh <- e:
	default:
	}
}

func (s *Subscription) sendClosed(e ClosedEvent) {
	select {
	case s.closedCh <- e:
	default:
	}
}

func (s *Subscription) sendDismissed(e DismissedEvent) {
	select {
	case s.dismissedCh <- e:
	default:
	}
}
