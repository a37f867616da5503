package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homeguard-core/internal/audit"
	"github.com/nerrad567/homeguard-core/internal/auth"
	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/validation"
)

// DefaultTimeout bounds how long a command waits for its device lock.
const DefaultTimeout = 10 * time.Second

// DefaultSource is recorded in the audit trail when Options.Source is empty.
const DefaultSource = "core"

// DeviceRegistry is what the executor needs from the device package.
// *device.Registry satisfies it.
type DeviceRegistry interface {
	Get(ctx context.Context, id int64) (device.Device, error)
	ListByOwner(ctx context.Context, ownerID string) ([]device.Device, error)
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (device.Device, error)
	Create(ctx context.Context, d device.Device) (device.Device, error)
	Update(ctx context.Context, d device.Device) error
	Delete(ctx context.Context, id int64) error
	Invalidate(id int64)
}

// UserDirectory resolves device owners.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
}

// AuditLog records executed commands. audit.Repository satisfies it.
type AuditLog interface {
	Create(ctx context.Context, e *audit.Entry) error
}

// StatePublisher announces committed device state (e.g. over MQTT).
type StatePublisher interface {
	PublishDeviceState(rec device.Record) error
}

// StateRecorder stores committed device state as time series.
type StateRecorder interface {
	RecordDeviceState(rec device.Record)
}

// Logger defines the logging interface used by the Executor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures an Executor. Devices and Users are required.
type Options struct {
	Devices   DeviceRegistry
	Users     UserDirectory
	Audit     AuditLog       // optional
	Publisher StatePublisher // optional
	Recorder  StateRecorder  // optional
	Timeout   time.Duration
	Source    string
	Logger    Logger
}

// Executor runs device commands.
//
// Thread Safety: all methods are safe for concurrent use.
type Executor struct {
	devices   DeviceRegistry
	users     UserDirectory
	audit     AuditLog
	publisher StatePublisher
	recorder  StateRecorder
	timeout   time.Duration
	source    string
	logger    Logger

	locks *deviceLocks
	wg    sync.WaitGroup
}

// NewExecutor creates an Executor.
func NewExecutor(opts Options) *Executor {
	e := &Executor{
		devices:   opts.Devices,
		users:     opts.Users,
		audit:     opts.Audit,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		timeout:   opts.Timeout,
		source:    opts.Source,
		logger:    opts.Logger,
		locks:     newDeviceLocks(),
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.source == "" {
		e.source = DefaultSource
	}
	if e.logger == nil {
		e.logger = noopLogger{}
	}
	return e
}

// Execute applies cmd to the device on behalf of actor.
//
// Errors:
//   - device.ErrDeviceNotFound if the id does not exist
//   - ErrForbidden if actor may not operate the device
//   - ErrUnknownAction, ErrMissingValue, device.ErrInvalidArgument for bad commands
//   - *PersistenceError if the store rejected the new state
//
// With a *PersistenceError the returned Result still describes the
// transition that was attempted.
func (e *Executor) Execute(ctx context.Context, actor *auth.User, deviceID int64, cmd Command) (Result, error) {
	res := Result{CommandID: uuid.NewString(), DeviceID: deviceID}

	res, err := e.execute(ctx, actor, res, cmd)
	e.record(ctx, actor, audit.ActionCommand, deviceID, err, map[string]any{
		"command_id": res.CommandID,
		"action":     string(cmd.Action),
		"value":      cmd.Value,
		"message":    res.Message,
	})
	if err != nil {
		e.logger.Warn("command failed",
			"command_id", res.CommandID,
			"device_id", deviceID,
			"action", cmd.Action,
			"error", err,
		)
		return res, err
	}

	e.logger.Info("command executed",
		"command_id", res.CommandID,
		"device_id", deviceID,
		"action", cmd.Action,
		"status", res.Status,
	)
	return res, nil
}

func (e *Executor) execute(ctx context.Context, actor *auth.User, res Result, cmd Command) (Result, error) {
	id := res.DeviceID

	lockCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	unlock, err := e.locks.acquire(lockCtx, id)
	if err != nil {
		return res, fmt.Errorf("command: waiting for device %d: %w", id, err)
	}
	defer unlock()

	// Past this point the command runs to completion.
	storeCtx := context.WithoutCancel(ctx)

	d, err := e.devices.Get(storeCtx, id)
	if err != nil {
		return res, fmt.Errorf("command: device %d: %w", id, err)
	}
	if !auth.CanOperate(actor, d.OwnerID()) {
		return res, fmt.Errorf("%w: device %d", ErrForbidden, id)
	}
	if err := cmd.Validate(); err != nil {
		return res, err
	}

	out, err := apply(d, cmd)
	if err != nil {
		return res, fmt.Errorf("command: device %d: %w", id, err)
	}
	res = fill(res, d, out)

	if !out.Changed {
		return res, nil
	}

	if err := e.devices.Update(storeCtx, d); err != nil {
		e.devices.Invalidate(id)
		return res, &PersistenceError{DeviceID: id, Op: string(cmd.Action), Err: err}
	}

	e.announce(d.Record())
	return res, nil
}

// normaliseOwner matches the stored form of owner emails.
func normaliseOwner(ownerID string) string {
	return strings.ToLower(strings.TrimSpace(ownerID))
}

func apply(d device.Device, cmd Command) (device.Outcome, error) {
	switch cmd.Action {
	case ActionTurnOn:
		return d.TurnOn(), nil
	case ActionTurnOff:
		return d.TurnOff(), nil
	case ActionAdjustSetting:
		return d.AdjustSetting(*cmd.Value)
	default:
		return device.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func fill(res Result, d device.Device, out device.Outcome) Result {
	res.Message = out.Message
	res.Changed = out.Changed
	res.Supported = out.Supported
	res.Status = d.Status()
	res.Setting = d.Setting()
	res.LastUpdated = d.LastUpdated()
	rec := d.Record()
	res.Device = &rec
	return res
}

// Submit runs Execute on its own goroutine. The channel receives exactly
// one Outcome and is then closed.
func (e *Executor) Submit(ctx context.Context, actor *auth.User, deviceID int64, cmd Command) <-chan Outcome {
	ch := make(chan Outcome, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(ch)
		res, err := e.Execute(ctx, actor, deviceID, cmd)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// Wait blocks until every submitted command has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Devices lists the devices of ownerID that actor may see.
func (e *Executor) Devices(ctx context.Context, actor *auth.User, ownerID string) ([]device.Device, error) {
	ownerID = normaliseOwner(ownerID)
	if !auth.CanOperate(actor, ownerID) {
		return nil, fmt.Errorf("%w: devices of %s", ErrForbidden, ownerID)
	}
	return e.devices.ListByOwner(ctx, ownerID)
}

// Device returns one device if actor may operate it.
func (e *Executor) Device(ctx context.Context, actor *auth.User, id int64) (device.Device, error) {
	d, err := e.devices.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("command: device %d: %w", id, err)
	}
	if !auth.CanOperate(actor, d.OwnerID()) {
		return nil, fmt.Errorf("%w: device %d", ErrForbidden, id)
	}
	return d, nil
}

// CreateDevice adds a device of kind for ownerID in its default off state.
// The owner must exist and may not already have a device with that name.
func (e *Executor) CreateDevice(ctx context.Context, actor *auth.User, ownerID string, kind device.Kind, name string) (device.Device, error) {
	d, err := e.createDevice(ctx, actor, ownerID, kind, name)

	var id int64
	if d != nil {
		id = d.ID()
	}
	e.record(ctx, actor, audit.ActionCreate, id, err, map[string]any{
		"owner": ownerID,
		"kind":  string(kind),
		"name":  name,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (e *Executor) createDevice(ctx context.Context, actor *auth.User, ownerID string, kind device.Kind, name string) (device.Device, error) {
	ownerID = normaliseOwner(ownerID)
	if !auth.CanManage(actor, ownerID) {
		return nil, fmt.Errorf("%w: create device for %s", ErrForbidden, ownerID)
	}
	owner, err := e.users.GetByEmail(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("command: owner %s: %w", ownerID, err)
	}

	d, err := device.New(kind, owner.Email, name)
	if err != nil {
		return nil, err
	}
	return e.insert(ctx, d)
}

func (e *Executor) insert(ctx context.Context, d device.Device) (device.Device, error) {
	_, err := e.devices.FindByOwnerAndName(ctx, d.OwnerID(), d.Name())
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s already has %q", device.ErrDeviceExists, d.OwnerID(), d.Name())
	case !errors.Is(err, device.ErrDeviceNotFound):
		return nil, fmt.Errorf("command: checking name: %w", err)
	}

	saved, err := e.devices.Create(context.WithoutCancel(ctx), d)
	if err != nil {
		return nil, fmt.Errorf("command: creating %q: %w", d.Name(), err)
	}
	e.announce(saved.Record())
	return saved, nil
}

// DeleteDevice removes a device. Later operations on its id fail with
// device.ErrDeviceNotFound.
func (e *Executor) DeleteDevice(ctx context.Context, actor *auth.User, id int64) error {
	err := e.deleteDevice(ctx, actor, id)
	e.record(ctx, actor, audit.ActionDelete, id, err, nil)
	return err
}

func (e *Executor) deleteDevice(ctx context.Context, actor *auth.User, id int64) error {
	lockCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	unlock, err := e.locks.acquire(lockCtx, id)
	if err != nil {
		return fmt.Errorf("command: waiting for device %d: %w", id, err)
	}
	defer unlock()

	storeCtx := context.WithoutCancel(ctx)
	d, err := e.devices.Get(storeCtx, id)
	if err != nil {
		return fmt.Errorf("command: device %d: %w", id, err)
	}
	if !auth.CanManage(actor, d.OwnerID()) {
		return fmt.Errorf("%w: delete device %d", ErrForbidden, id)
	}
	if err := e.devices.Delete(storeCtx, id); err != nil {
		return fmt.Errorf("command: deleting device %d: %w", id, err)
	}
	return nil
}

// SeedDefaults gives an owner with no devices a Kitchen Light (75%, ON)
// and a Garage Gate (CLOSED). Owners that already have devices are left alone.
func (e *Executor) SeedDefaults(ctx context.Context, ownerID string) ([]device.Device, error) {
	ownerID = normaliseOwner(ownerID)
	existing, err := e.devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("command: listing devices of %s: %w", ownerID, err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	light, err := device.NewLight(ownerID, "Kitchen Light", 75, device.StatusOn)
	if err != nil {
		return nil, err
	}
	gate, err := device.NewGate(ownerID, "Garage Gate", device.StatusClosed)
	if err != nil {
		return nil, err
	}

	var seeded []device.Device
	for _, d := range []device.Device{light, gate} {
		saved, err := e.insert(ctx, d)
		if errors.Is(err, device.ErrDeviceExists) {
			continue
		}
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, saved)
	}

	e.logger.Info("default devices created", "owner", ownerID, "count", len(seeded))
	return seeded, nil
}

// announce hands committed state to the optional sinks. Sink failures are
// logged and never fail the command.
func (e *Executor) announce(rec device.Record) {
	if e.publisher != nil {
		if err := e.publisher.PublishDeviceState(rec); err != nil {
			e.logger.Warn("publishing device state failed", "device_id", rec.ID, "error", err)
		}
	}
	if e.recorder != nil {
		e.recorder.RecordDeviceState(rec)
	}
}

func (e *Executor) record(ctx context.Context, actor *auth.User, action string, deviceID int64, err error, details map[string]any) {
	if e.audit == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: audit.EntityDevice,
		Source:     e.source,
		Outcome:    outcomeOf(err),
		Details:    details,
	}
	if deviceID != 0 {
		entry.EntityID = strconv.FormatInt(deviceID, 10)
	}
	if actor != nil {
		entry.UserID = actor.Email
	}
	if err != nil {
		if entry.Details == nil {
			entry.Details = make(map[string]any, 1)
		}
		entry.Details["error"] = err.Error()
	}

	// Continue even if the trail cannot be written; the command already happened.
	if auditErr := e.audit.Create(context.WithoutCancel(ctx), entry); auditErr != nil {
		e.logger.Error("failed to write audit entry", "action", action, "device_id", deviceID, "error", auditErr)
	}
}

var rejections = []error{
	ErrForbidden,
	ErrUnknownAction,
	ErrMissingValue,
	device.ErrDeviceNotFound,
	device.ErrDeviceExists,
	device.ErrInvalidArgument,
	device.ErrInvalidDevice,
	device.ErrInvalidKind,
	auth.ErrUserNotFound,
	validation.ErrInvalid,
}

func outcomeOf(err error) audit.Outcome {
	if err == nil {
		return audit.OutcomeSuccess
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return audit.OutcomeRejected
		}
	}
	return audit.OutcomeFailure
}
