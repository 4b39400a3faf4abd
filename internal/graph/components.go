package graph

// Component is a connected set of vertices.
type Component struct {
	IDs []ID
}

// FindComponents groups ids into connected components using undirected BFS.
// neighbors decides adjacency, so callers can connect vertices through
// intermediate ones (for example tables through shared columns). Components
// come out in order of their first member in ids.
func FindComponents(ids []ID, neighbors func(ID) []ID) []Component {
	visited := make(map[ID]bool, len(ids))
	var components []Component

	for _, id := range ids {
		if visited[id] {
			continue
		}
		components = append(components, Component{IDs: bfs(id, neighbors, visited)})
	}

	return components
}

func bfs(start ID, neighbors func(ID) []ID, visited map[ID]bool) []ID {
	queue := []ID{start}
	visited[start] = true
	var result []ID

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range neighbors(node) {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return result
}
