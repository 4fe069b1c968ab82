package notifications

// Request carries the arguments of a Notify call with its hints already
// resolved into typed fields.
type Request struct {
	AppName    string
	ReplacesID uint32 // 0 = new notification
	AppIcon    string
	Summary    string
	Body       string
	Actions    []Action
	Hints      Hints
	Timeout    int32 // ms, TimeoutDefault = use the configured popup timeout
}

// Hints holds the hints understood by the registry.
type Hints struct {
	ImageData *ImageData // "image-data" (or "image_data")
	ImagePath string     // "image-path" (or "image_path")
	IconData  *ImageData // legacy "icon_data"
	Urgency   *Urgency   // nil means UrgencyNormal
}

func (h Hints) urgency() Urgency {
	if h.Urgency == nil {
		return UrgencyNormal
	}
	return *h.Urgency
}
