package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gen2brain/malgo"
)

// Device describes a capture device.
type Device struct {
	Index     int
	Name      string
	IsDefault bool

	id malgo.DeviceID
}

// ListDevices enumerates the capture devices of the default backend.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: initialize context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	return listDevices(ctx)
}

func listDevices(ctx *malgo.AllocatedContext) ([]Device, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("audio: list capture devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			Index:     i,
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
			id:        info.ID,
		}
	}
	return devices, nil
}

// SelectDevice resolves a device setting against devices. "default" or
// empty selects the system default and returns nil. A number selects by
// index; anything else matches by name, exactly first and then ignoring
// case.
func SelectDevice(devices []Device, setting string) (*Device, error) {
	setting = strings.TrimSpace(setting)
	if isDefaultDevice(setting) {
		return nil, nil
	}

	if idx, err := strconv.Atoi(setting); err == nil {
		for i := range devices {
			if devices[i].Index == idx {
				return &devices[i], nil
			}
		}
		return nil, fmt.Errorf("audio: no capture device with index %d (%d devices available, see 'ostt list-devices')", idx, len(devices))
	}

	for i := range devices {
		if devices[i].Name == setting {
			return &devices[i], nil
		}
	}
	for i := range devices {
		if strings.EqualFold(devices[i].Name, setting) {
			return &devices[i], nil
		}
	}

	return nil, fmt.Errorf("audio: no capture device named %q (see 'ostt list-devices')", setting)
}

func isDefaultDevice(setting string) bool {
	setting = strings.TrimSpace(setting)
	return setting == "" || strings.EqualFold(setting, "default")
}
