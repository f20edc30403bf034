package captest

import (
	"fmt"

	"github.com/flecs-run/edge-core/internal/capability"
)

// UsbDeviceReader is a scriptable fake of capability.UsbDeviceReader
// backed by a fixed device set.
type UsbDeviceReader struct {
	Devices map[string]capability.UsbDevice
	ReadErr error
}

func NewUsbDeviceReader(devices map[string]capability.UsbDevice) *UsbDeviceReader {
	return &UsbDeviceReader{Devices: devices}
}

func (r *UsbDeviceReader) ReadUsbDevices() (map[string]capability.UsbDevice, error) {
	if r.ReadErr != nil {
		return nil, r.ReadErr
	}
	out := make(map[string]capability.UsbDevice, len(r.Devices))
	for k, v := range r.Devices {
		out[k] = v
	}
	return out, nil
}

func (r *UsbDeviceReader) GetUsbValue(valueName, port string) (string, error) {
	dev, ok := r.Devices[port]
	if !ok {
		return "", fmt.Errorf("no usb device at port %s", port)
	}
	switch valueName {
	case "busnum":
		return fmt.Sprintf("%d", dev.BusNum), nil
	case "devnum":
		return fmt.Sprintf("%d", dev.DevNum), nil
	default:
		return "", fmt.Errorf("unknown usb value %q", valueName)
	}
}
