package dbusd

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/notifyd/internal/notifications"
)

// wireImage builds an image hint as godbus decodes it off the wire.
func wireImage(w, h int32, data []byte) dbus.Variant {
	return dbus.MakeVariant([]any{w, h, w * 3, false, int32(8), int32(3), data})
}

func TestParseHints_Empty(t *testing.T) {
	h, err := parseHints(nil, "")
	require.NoError(t, err)
	assert.Nil(t, h.ImageData)
	assert.Nil(t, h.IconData)
	assert.Empty(t, h.ImagePath)
	assert.Nil(t, h.Urgency)
}

func TestParseHints_Images(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6}

	h, err := parseHints(map[string]dbus.Variant{
		"image-data": wireImage(2, 1, pixels),
		"icon_data":  wireImage(1, 1, pixels[:3]),
		"image-path": dbus.MakeVariant("/a.png"),
	}, "")
	require.NoError(t, err)
	require.NotNil(t, h.ImageData)
	assert.Equal(t, int32(2), h.ImageData.Width)
	assert.Equal(t, int32(6), h.ImageData.Rowstride)
	assert.Equal(t, pixels, h.ImageData.Data)
	assert.Nil(t, h.IconData, "icon_data is only decoded as a last resort")
	assert.Equal(t, "/a.png", h.ImagePath)
}

func TestParseHints_Aliases(t *testing.T) {
	h, err := parseHints(map[string]dbus.Variant{
		"image_data": wireImage(1, 1, []byte{1, 2, 3}),
		"image_path": dbus.MakeVariant("file:///home/me/My%20Pictures/a.png"),
	}, "")
	require.NoError(t, err)
	assert.NotNil(t, h.ImageData)
	assert.Equal(t, "/home/me/My Pictures/a.png", h.ImagePath)
}

func TestParseHints_IconDataLastResort(t *testing.T) {
	bare := dbus.MakeVariant([]byte{1, 2, 3})

	tests := []struct {
		name    string
		hints   map[string]dbus.Variant
		appIcon string
		decoded bool
		wantErr bool
	}{
		{name: "alone", hints: map[string]dbus.Variant{"icon_data": wireImage(1, 1, []byte{1, 2, 3})}, decoded: true},
		{name: "malformed alone", hints: map[string]dbus.Variant{"icon_data": bare}, wantErr: true},
		{name: "behind image-path", hints: map[string]dbus.Variant{"image-path": dbus.MakeVariant("/a.png"), "icon_data": bare}},
		{name: "behind app icon", hints: map[string]dbus.Variant{"icon_data": dbus.MakeVariant([]any{int32(1)})}, appIcon: "firefox"},
		{name: "behind image-data", hints: map[string]dbus.Variant{"image-data": wireImage(1, 1, []byte{1, 2, 3}), "icon_data": bare}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseHints(tt.hints, tt.appIcon)
			if tt.wantErr {
				require.ErrorIs(t, err, notifications.ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.decoded, h.IconData != nil)
		})
	}
}

func TestParseHints_MalformedImage(t *testing.T) {
	tests := []struct {
		name string
		v    dbus.Variant
	}{
		{name: "not a struct", v: dbus.MakeVariant("nope")},
		{name: "short struct", v: dbus.MakeVariant([]any{int32(1), int32(1)})},
		{name: "wrong field type", v: dbus.MakeVariant([]any{"1", int32(1), int32(3), false, int32(8), int32(3), []byte{1, 2, 3}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseHints(map[string]dbus.Variant{"image-data": tt.v}, "")
			assert.True(t, errors.Is(err, notifications.ErrInvalidImage), "got %v", err)
		})
	}
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  notifications.Urgency
	}{
		{name: "byte low", value: byte(0), want: notifications.UrgencyLow},
		{name: "byte critical", value: byte(2), want: notifications.UrgencyCritical},
		{name: "int32", value: int32(2), want: notifications.UrgencyCritical},
		{name: "uint32", value: uint32(0), want: notifications.UrgencyLow},
		{name: "out of range", value: byte(7), want: notifications.UrgencyNormal},
		{name: "negative", value: int32(-1), want: notifications.UrgencyNormal},
		{name: "huge uint64", value: uint64(1 << 40), want: notifications.UrgencyNormal},
		{name: "string", value: "critical", want: notifications.UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseUrgency(dbus.MakeVariant(tt.value)))
		})
	}
}

func TestPathFromURI(t *testing.T) {
	assert.Equal(t, "/a.png", pathFromURI("/a.png"))
	assert.Equal(t, "/a.png", pathFromURI("file:///a.png"))
	assert.Equal(t, "dialog-information", pathFromURI("dialog-information"))
}
