package w1therm

import "sync"

var _ ThermoSensor = (*fakeThermoSensor)(nil)

type fakeThermoSensor struct {
	onTemperatureErrs []error
	onTemperatureVals []float64
	argTemperature    []Unit
	onCloseErrs       []error
	numCloseCalls     int
	onID              string
	onType            SensorType
	mutex             sync.Mutex
}

func (fts *fakeThermoSensor) Temperature(unit Unit) (temp float64, err error) {
	fts.mutex.Lock()
	defer fts.mutex.Unlock()

	fts.argTemperature = append(fts.argTemperature, unit)
	if len(fts.onTemperatureVals) > 0 {
		temp = fts.onTemperatureVals[0]
		fts.onTemperatureVals = fts.onTemperatureVals[1:]
	}
	if len(fts.onTemperatureErrs) > 0 {
		err = fts.onTemperatureErrs[0]
		fts.onTemperatureErrs = fts.onTemperatureErrs[1:]
	}
	return
}

func (fts *fakeThermoSensor) Close() (err error) {
	fts.mutex.Lock()
	defer fts.mutex.Unlock()

	fts.numCloseCalls++
	if len(fts.onCloseErrs) > 0 {
		err = fts.onCloseErrs[0]
		fts.onCloseErrs = fts.onCloseErrs[1:]
	}
	return
}

func (fts *fakeThermoSensor) ID() string {
	return fts.onID
}

func (fts *fakeThermoSensor) Type() SensorType {
	return fts.onType
}

// readingRecorder collects readings passed to a monitor's callback
type readingRecorder struct {
	readings []Reading
	mutex    sync.Mutex
}

func (rr *readingRecorder) record(r Reading) {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()
	rr.readings = append(rr.readings, r)
}

func (rr *readingRecorder) snapshot() []Reading {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()
	return append([]Reading{}, rr.readings...)
}
