package scene

// SceneData is the persisted form of a scene.
type SceneData struct {
	ID          ID         `json:"id" yaml:"id"`
	SceneWidth  int        `json:"sceneWidth" yaml:"sceneWidth"`
	SceneHeight int        `json:"sceneHeight" yaml:"sceneHeight"`
	Nodes       []NodeData `json:"nodes" yaml:"nodes"`
	Edges       []EdgeData `json:"edges" yaml:"edges"`
}

// NodeData is the persisted form of a node. Content holds the node-kind
// specific payload.
type NodeData struct {
	ID      ID             `json:"id" yaml:"id"`
	Title   string         `json:"title" yaml:"title"`
	OpCode  int            `json:"opCode" yaml:"opCode"`
	PosX    float64        `json:"posX" yaml:"posX"`
	PosY    float64        `json:"posY" yaml:"posY"`
	Inputs  []SocketData   `json:"inputs" yaml:"inputs"`
	Outputs []SocketData   `json:"outputs" yaml:"outputs"`
	Content map[string]any `json:"content" yaml:"content"`
}

// SocketData is the persisted form of a socket. Position stores the side.
type SocketData struct {
	ID               ID         `json:"id" yaml:"id"`
	Index            int        `json:"index" yaml:"index"`
	AllowsMultiEdges bool       `json:"allowsMultiEdges" yaml:"allowsMultiEdges"`
	Position         Side       `json:"position" yaml:"position"`
	SocketType       SocketType `json:"socketType" yaml:"socketType"`
}

// EdgeData is the persisted form of an attached edge.
type EdgeData struct {
	ID          ID       `json:"id" yaml:"id"`
	EdgeType    EdgeType `json:"edgeType" yaml:"edgeType"`
	StartSocket ID       `json:"startSocket" yaml:"startSocket"`
	EndSocket   *ID      `json:"endSocket" yaml:"endSocket"`
}

// ClipboardData is the payload of a copy or cut.
type ClipboardData struct {
	Nodes []NodeData `json:"nodes" yaml:"nodes"`
	Edges []EdgeData `json:"edges" yaml:"edges"`
}
