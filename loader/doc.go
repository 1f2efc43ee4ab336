// Package loader manages the lifecycle of codec modules.
//
// Each registered module has a handle moving through four states:
//
//	Unloaded -> Loading -> Ready
//	                   -> Failed
//	Loading, Ready, Failed -> Unloaded   (forced reload, retry, close)
//
// Initialize starts a load per module on its own goroutine and waits for all
// of them. A module that fails to load is marked Failed and does not affect
// the others. Initialize leaves Ready modules alone, joins loads already in
// flight and retries Failed ones. ForceReload tears every module down to
// Unloaded, clearing instance and error, then loads it again.
//
// Every load attempt carries the handle's generation. When a reload
// overtakes an in-flight load, the old load's context is cancelled and its
// result, if it still arrives, is closed and dropped.
//
// Compress and Decompress delegate to a Ready module's codec. Calling them on
// a module that is not Ready returns an error matching
// errors.ErrModuleNotReady and changes nothing. Calls lease the instance, so
// a reload closes a codec only after the calls using it return.
//
// State changes are observable through Snapshot and Subscribe:
//
//	events, stop := l.Subscribe(16)
//	defer stop()
//	for ev := range events {
//		fmt.Println(ev.Module, ev.From, "->", ev.To)
//	}
package loader
