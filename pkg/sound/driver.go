// ABOUTME: Cocoa Touch sound driver
// ABOUTME: Brings up the output unit and forwards each render request to the mixer
package sound

import (
	"log"

	"github.com/Resonate-Protocol/touchaudio/pkg/audio"
	"github.com/Resonate-Protocol/touchaudio/pkg/audio/unit"
	"github.com/Resonate-Protocol/touchaudio/pkg/driver"
)

const (
	// Name is the symbolic name the driver is registered under
	Name = "cocoa_touch"

	// Priority among sound drivers
	Priority = 10

	// Description shown to the user by the host
	Description = "Cocoa Touch Sound Driver"

	logPrefix = "cocoa_touch_s"
)

// Start stages, reported in StartError.Stage
const (
	StageFindComponent  = "Failed to start output: no output component found"
	StageNewInstance    = "Failed to start output: component instantiation"
	StageInitialize     = "Failed to start output: unit initialize"
	StageStreamFormat   = "Failed to start output: set stream format"
	StageRenderCallback = "Failed to start output: set render callback"
	StageOutputStart    = "Failed to start output: output unit start"
)

// Mixer fills output buffers with mixed PCM
type Mixer interface {
	// Initialize prepares the mixer for the given output rate
	Initialize(sampleRate int)

	// Mix writes exactly frames interleaved stereo 16-bit frames into buf.
	// It is called on the audio thread and must be bounded and allocation-free.
	Mix(buf []int16, frames int)
}

// Driver streams mixer output to the platform output unit
type Driver struct {
	mixer  Mixer
	units  unit.Provider
	output unit.Unit
	format audio.StreamFormat
}

// New creates a sound driver
func New(mixer Mixer, units unit.Provider) *Driver {
	return &Driver{
		mixer: mixer,
		units: units,
	}
}

// Factory describes the driver for registration with a driver.Registry
func Factory(mixer Mixer, units unit.Provider) driver.Factory {
	return driver.Factory{
		Type:        driver.TypeSound,
		Name:        Name,
		Priority:    Priority,
		Description: Description,
		New: func() driver.Driver {
			return New(mixer, units)
		},
	}
}

func (d *Driver) Name() string {
	return Name
}

// Format returns the stream format of the running output
func (d *Driver) Format() audio.StreamFormat {
	return d.format
}

// SampleRate is the "hz" option of params. Missing, malformed and
// non-positive rates give audio.DefaultSampleRate.
func SampleRate(params driver.Params) int {
	hz := params.GetInt("hz", audio.DefaultSampleRate)
	if hz <= 0 {
		log.Printf("%s: invalid hz=%d, using %d", logPrefix, hz, audio.DefaultSampleRate)
		return audio.DefaultSampleRate
	}
	return hz
}

// Start brings up the output unit. Each failing step is reported as a
// *driver.StartError naming the stage; steps already completed are left in
// place for Stop to tear down.
func (d *Driver) Start(params driver.Params) error {
	if d.output != nil {
		log.Printf("%s: already running, restarting", logPrefix)
		d.Stop()
	}
	if d.output != nil {
		// Stop gave up part way; the old unit must not outlive the new one
		if err := d.output.Dispose(); err != nil {
			log.Printf("%s: Core_CloseAudio: unit dispose failed: %v", logPrefix, err)
		}
		d.output = nil
	}

	format := audio.NewStreamFormat(SampleRate(params))
	d.mixer.Initialize(format.SampleRate)

	device, _ := params.Get("device")
	comp := d.units.FindNext(nil, unit.Description{
		Type:    unit.TypeOutput,
		SubType: unit.OutputSubType(device),
	})
	if comp == nil {
		return d.startError(StageFindComponent, nil)
	}

	output, err := comp.NewInstance()
	if err != nil {
		return d.startError(StageNewInstance, err)
	}
	d.output = output
	d.format = format

	if err := output.Initialize(); err != nil {
		return d.startError(StageInitialize, err)
	}

	if err := output.SetStreamFormat(format); err != nil {
		return d.startError(StageStreamFormat, err)
	}

	if err := output.SetRenderCallback(d.render); err != nil {
		return d.startError(StageRenderCallback, err)
	}

	if err := output.Start(); err != nil {
		return d.startError(StageOutputStart, err)
	}

	log.Printf("%s: started at %s", logPrefix, format)
	return nil
}

// Stop halts the stream, removes the render callback and tears the unit
// down. A failing step is logged and the rest of the teardown is skipped.
func (d *Driver) Stop() {
	if d.output == nil {
		return
	}

	if err := d.output.Stop(); err != nil {
		log.Printf("%s: Core_CloseAudio: output unit stop failed: %v", logPrefix, err)
		return
	}

	if err := d.output.SetRenderCallback(nil); err != nil {
		log.Printf("%s: Core_CloseAudio: remove render callback failed: %v", logPrefix, err)
		return
	}

	if err := d.output.Uninitialize(); err != nil {
		log.Printf("%s: Core_CloseAudio: unit uninitialize failed: %v", logPrefix, err)
		return
	}

	if err := d.output.Dispose(); err != nil {
		log.Printf("%s: Core_CloseAudio: unit dispose failed: %v", logPrefix, err)
		return
	}

	d.output = nil
}

// render is installed as the output unit's render callback
func (d *Driver) render(out []int16, frames int) {
	d.mixer.Mix(out, frames)
}

func (d *Driver) startError(stage string, err error) error {
	return &driver.StartError{Driver: logPrefix, Stage: stage, Err: err}
}
