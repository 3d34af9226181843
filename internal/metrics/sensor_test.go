package metrics

import (
	"errors"
	"sync"
	"testing"
)

func registers(m map[string]Payload) func() map[string]Payload {
	return func() map[string]Payload { return m }
}

func TestSensorReadsWithFallback(t *testing.T) {
	ctrl := &MockController{Values: registers(map[string]Payload{
		KeyCPUDie:       {KeyCPUDie, TypeSP78, EncodeSP78(61.5)},
		KeyGPUProximity: {KeyGPUProximity, TypeSP78, EncodeSP78(48)},
		KeyFanCount:     {KeyFanCount, TypeUI8, []byte{2}},
		FanSpeedKey(0):  {FanSpeedKey(0), TypeFPE2, EncodeFPE2(2400)},
		FanMinKey(0):    {FanMinKey(0), TypeFPE2, EncodeFPE2(1200)},
		FanMaxKey(0):    {FanMaxKey(0), TypeFPE2, EncodeFPE2(6000)},
		FanSpeedKey(1):  {FanSpeedKey(1), TypeFPE2, EncodeFPE2(0)},
	})}
	s := NewSensorSampler(ctrl, nil)
	st := s.Update()

	if st.CPUTemperatureC != 61.5 {
		t.Errorf("expected CPU temperature from fallback key 61.5, got %f", st.CPUTemperatureC)
	}
	if st.GPUTemperatureC != 48 {
		t.Errorf("expected GPU temperature 48, got %f", st.GPUTemperatureC)
	}
	if st.SSDTemperature != 0 {
		t.Errorf("missing key should read 0, got %f", st.SSDTemperature)
	}
	if len(st.Fans) != 1 {
		t.Fatalf("expected 1 spinning fan, got %+v", st.Fans)
	}
	f := st.Fans[0]
	if f.ID != 0 || f.RPM != 2400 || f.MinRPM != 1200 || f.MaxRPM != 6000 || f.Name != "Fan 1" {
		t.Errorf("unexpected fan: %+v", f)
	}
	if !st.Available || s.ConnState() != ConnOpen {
		t.Errorf("expected open and available, state=%v", s.ConnState())
	}
}

func TestSensorOutOfRangeIsUnavailable(t *testing.T) {
	ctrl := &MockController{Values: registers(map[string]Payload{
		KeyCPUProximity: {KeyCPUProximity, TypeSP78, EncodeSP78(-5)},
		KeyCPUDie:       {KeyCPUDie, TypeSP78, EncodeSP78(0)},
		KeyCPUHeatsink:  {KeyCPUHeatsink, TypeSP78, EncodeSP78(127)},
		KeyGPUProximity: {KeyGPUProximity, TypeFPE2, EncodeFPE2(150)},
	})}
	st := NewSensorSampler(ctrl, nil).Update()
	if st.CPUTemperatureC != 127 {
		t.Errorf("expected first in-range value 127, got %f", st.CPUTemperatureC)
	}
	if st.GPUTemperatureC != 0 {
		t.Errorf("150°C should be rejected, got %f", st.GPUTemperatureC)
	}
}

func TestSensorFailedOpenNoRetryStorm(t *testing.T) {
	ctrl := &MockController{OpenErr: ErrControllerUnavailable}
	s := NewSensorSampler(ctrl, nil)

	for i := 0; i < 100; i++ {
		st := s.Update()
		if st.Available || st.CPUTemperatureC != 0 || st.GPUTemperatureC != 0 || len(st.Fans) != 0 {
			t.Fatalf("update %d: expected unavailable, got %+v", i, st)
		}
	}
	if ctrl.Opens != 1 || s.OpenAttempts() != 1 {
		t.Errorf("expected exactly one open attempt, got %d", ctrl.Opens)
	}
	if s.ConnState() != ConnFailed {
		t.Errorf("expected failed state, got %v", s.ConnState())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close after failed open: %v", err)
	}
	if ctrl.Closes != 0 {
		t.Errorf("controller that never opened was closed %d times", ctrl.Closes)
	}
}

func TestSensorCloseIsFinal(t *testing.T) {
	ctrl := &MockController{Values: registers(map[string]Payload{
		KeyCPUProximity: {KeyCPUProximity, TypeSP78, EncodeSP78(50)},
	})}
	s := NewSensorSampler(ctrl, nil)
	if st := s.Update(); st.CPUTemperatureC != 50 {
		t.Fatalf("expected 50, got %f", st.CPUTemperatureC)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if ctrl.Closes != 1 {
		t.Errorf("expected exactly one controller close, got %d", ctrl.Closes)
	}

	st := s.Update()
	if st.CPUTemperatureC != 0 || st.Available {
		t.Errorf("update after close should be unavailable, got %+v", st)
	}
	if ctrl.Opens != 1 {
		t.Errorf("update after close reopened the controller (%d opens)", ctrl.Opens)
	}
}

func TestSensorCloseRacesUpdate(t *testing.T) {
	ctrl := &MockController{Values: registers(map[string]Payload{
		KeyCPUProximity: {KeyCPUProximity, TypeSP78, EncodeSP78(50)},
		KeyFanCount:     {KeyFanCount, TypeUI8, []byte{1}},
		FanSpeedKey(0):  {FanSpeedKey(0), TypeFPE2, EncodeFPE2(2000)},
	})}
	s := NewSensorSampler(ctrl, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Update()
		}
	}()
	go func() {
		defer wg.Done()
		s.Close()
	}()
	wg.Wait()

	if ctrl.Closes > 1 {
		t.Errorf("controller closed %d times", ctrl.Closes)
	}
	if st := s.Update(); st.Available {
		t.Errorf("expected unavailable after close, got %+v", st)
	}
}

func TestSensorCustomDecoder(t *testing.T) {
	ctrl := &MockController{Values: registers(map[string]Payload{
		KeyCPUProximity: {KeyCPUProximity, "raw ", []byte{42}},
	})}
	decode := func(p Payload) (float64, error) {
		if p.DataType != "raw " {
			return 0, errors.New("unexpected type")
		}
		return float64(p.Data[0]), nil
	}
	st := NewSensorSampler(ctrl, decode).Update()
	if st.CPUTemperatureC != 42 {
		t.Errorf("expected custom decoder result 42, got %f", st.CPUTemperatureC)
	}
}

func TestSensorNilController(t *testing.T) {
	s := NewSensorSampler(nil, nil)
	if st := s.Update(); st.Available {
		t.Errorf("nil controller should be unavailable, got %+v", st)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
