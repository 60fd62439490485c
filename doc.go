// Package imagevault provides an owned-file object store: image blobs
// persisted on a filesystem next to a metadata sidecar per object, with
// every operation gated by an ownership check against that sidecar.
//
// # Key Components
//
//   - Service: validates input and composes the object store with the
//     catalog query engine and ownership transfer
//   - ObjectStore: interface over blob/sidecar persistence, implemented
//     by the filesystem package
//   - Metadata: the fixed-shape sidecar record (owner plus creation and
//     modification timestamps)
//   - FilterQuery/FilterType: catalog queries over all sidecars
//
// # Ownership Model
//
// Every object is created with an owner string. Retrieve, Replace, and
// Delete require the caller to claim that exact owner; a mismatch is
// ErrForbidden and never exposes content or metadata. The only way to
// change an owner is the bulk Transfer operation.
//
// # Example Usage
//
//	root, _ := os.OpenRoot("./data")
//	store := filesystem.NewStore(root)
//	service, err := imagevault.NewService(store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, meta, err := service.Create(ctx, "cat.jpg", file, "alice")
//
// See the http package for the REST API and cmd/imagevault for the
// server binary.
package imagevault
