// Package hugegraph provides paged arrays for graphs with billions of nodes
// and a runtime that executes graph computations over them.
//
// # Paged Arrays
//
// Arrays of the paged package hold any number of elements. Up to 2^28
// elements they use one block; larger arrays are split into pages of one
// power-of-two length, so get and set stay O(1) and cursors iterate page by
// page without copying:
//
//	ranks := paged.NewDoubleArray(nodeCount)
//	c := ranks.NewCursor()
//	for c.Next() {
//	    for _, v := range c.Array()[c.Offset():c.Limit()] {
//	        sum += v
//	    }
//	}
//
// # Pipelines
//
// A pipeline names computations and storages by descriptor id. Descriptors
// say what runs; factories registered per id (or per storage backend) say
// how:
//
//	rt, _ := hugegraph.New(hugegraph.DefaultConfig())
//	hugegraph.RegisterDefaults(rt)
//
//	rt.Descriptors().RegisterStorage(&descriptor.StorageDescriptor{ID: 1, Name: "labels", ...})
//	rt.Descriptors().RegisterComputation(&descriptor.ComputationDescriptor{ID: 1, Name: "wcc", ...})
//	rt.Descriptors().RegisterPipeline(&descriptor.PipelineDescriptor{ID: 1, Name: "components",
//	    Computations: []uint32{1}, Storages: []uint32{1}})
//	rt.Computers().RegisterComputerFactory(1, newWCC)
//
//	res, err := rt.RunPipeline(ctx, 1, g)
//
// Errors name the failing phase and descriptor; use errors.Is with
// compute.ErrStepFailed, storage.ErrFlushFailed and friends.
//
// # Snapshots
//
// Storages can export their columns on Flush to any blobstore.Store (memory,
// local directory, MinIO, S3) with versions tracked by a blobstore.Committer
// (memory, local directory, DynamoDB):
//
//	rt, _ := hugegraph.New(cfg, hugegraph.WithSnapshotSink(store, committer))
//	ranks, version, _ := snapshot.Latest[float64](ctx, rt.SnapshotReader(), "ranks")
//
// # Configuration
//
// Config is read from TOML:
//
//	concurrency = 8
//	memory_limit_bytes = 17179869184
//	max_supersteps = 50
//	log_level = "debug"
//	snapshot_compression = "zstd"
//	snapshot_dir = "/var/lib/hugegraph"
package hugegraph
