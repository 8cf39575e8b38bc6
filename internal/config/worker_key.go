package config

type WorkerKeyStruct struct {
	LinkViewQueue string
}

var WorkerKey = &WorkerKeyStruct{
	LinkViewQueue: "link_view_queue",
}
