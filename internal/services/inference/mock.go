package inference

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"go.uber.org/zap"
)

const mockElapsedMs = 5.0

// generateMock synthesizes a fixed single-vertex point cloud without
// touching the network or the filesystem. Identical input filenames always
// produce the same response.
func (s *Service) generateMock(req *types.ValidatedRequest) *types.GenerateSplatResponse {
	s.logger.Info("serving mock splat", zap.String("filename", req.Filename))

	return &types.GenerateSplatResponse{
		OutputFilename: types.Stem(req.Filename) + "-mock.ply",
		PlyBytesBase64: base64.StdEncoding.EncodeToString(singlePointPLY()),
		ElapsedMs:      mockElapsedMs,
	}
}

func singlePointPLY() []byte {
	var buf bytes.Buffer
	buf.WriteString("ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex 1\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"end_header\n")
	binary.Write(&buf, binary.LittleEndian, []float32{0, 0, 2})

	return buf.Bytes()
}
