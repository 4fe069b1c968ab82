package dbusd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/notifyd/internal/notifications"
)

// parseHints resolves the hints understood by the registry. Unknown hints
// are ignored. icon_data is only decoded when neither an image hint nor
// appIcon provides the icon.
func parseHints(hints map[string]dbus.Variant, appIcon string) (notifications.Hints, error) {
	var h notifications.Hints

	for _, key := range []string{"image-data", "image_data"} {
		if v, ok := hints[key]; ok {
			img, err := parseImageData(v)
			if err != nil {
				return h, fmt.Errorf("hint %s: %w", key, err)
			}
			h.ImageData = img
			break
		}
	}

	for _, key := range []string{"image-path", "image_path"} {
		if v, ok := hints[key]; ok {
			if s, ok := v.Value().(string); ok && s != "" {
				h.ImagePath = pathFromURI(s)
				break
			}
		}
	}

	if v, ok := hints["icon_data"]; ok && h.ImageData == nil && h.ImagePath == "" && appIcon == "" {
		img, err := parseImageData(v)
		if err != nil {
			return h, fmt.Errorf("hint icon_data: %w", err)
		}
		h.IconData = img
	}

	if v, ok := hints["urgency"]; ok {
		u := parseUrgency(v)
		h.Urgency = &u
	}

	return h, nil
}

// parseImageData decodes the (iiibiiay) structure of an image hint.
func parseImageData(v dbus.Variant) (*notifications.ImageData, error) {
	fields, ok := v.Value().([]any)
	if !ok || len(fields) != 7 {
		return nil, fmt.Errorf("%w: unexpected signature %s", notifications.ErrInvalidImage, v.Signature())
	}

	width, ok1 := fields[0].(int32)
	height, ok2 := fields[1].(int32)
	rowstride, ok3 := fields[2].(int32)
	hasAlpha, ok4 := fields[3].(bool)
	bps, ok5 := fields[4].(int32)
	channels, ok6 := fields[5].(int32)
	data, ok7 := fields[6].([]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return nil, fmt.Errorf("%w: unexpected field types", notifications.ErrInvalidImage)
	}

	return &notifications.ImageData{
		Width:         width,
		Height:        height,
		Rowstride:     rowstride,
		HasAlpha:      hasAlpha,
		BitsPerSample: bps,
		Channels:      channels,
		Data:          data,
	}, nil
}

// parseUrgency accepts any integer variant. Out of range values are normal.
func parseUrgency(v dbus.Variant) notifications.Urgency {
	var n int64
	switch x := v.Value().(type) {
	case byte:
		n = int64(x)
	case int16:
		n = int64(x)
	case uint16:
		n = int64(x)
	case int32:
		n = int64(x)
	case uint32:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > 2 {
			return notifications.UrgencyNormal
		}
		n = int64(x)
	default:
		return notifications.UrgencyNormal
	}
	if n < int64(notifications.UrgencyLow) || n > int64(notifications.UrgencyCritical) {
		return notifications.UrgencyNormal
	}
	return notifications.Urgency(n)
}

// pathFromURI turns file:// URIs into plain paths.
func pathFromURI(s string) string {
	rest, ok := strings.CutPrefix(s, "file://")
	if !ok {
		return s
	}
	if p, err := url.PathUnescape(rest); err == nil {
		return p
	}
	return rest
}
