// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"encoding/xml"
	"net/http"
	"testing"

	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/require"
)

func newSmithyRequest(t *testing.T, rawURL string) *smithyhttp.Request {
	t.Helper()
	req := smithyhttp.NewStackRequest().(*smithyhttp.Request)
	httpReq, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	req.Request = httpReq
	return req
}

func TestAddSnapshotQuery(t *testing.T) {
	req := newSmithyRequest(t, "https://rgw.example.com/bucket/object_1.txt")

	addSnapshotQuery(req, snapIDParam, "7")
	require.Equal(t, "7", req.URL.Query().Get(snapIDParam))

	// setting again replaces, never duplicates
	addSnapshotQuery(req, snapIDParam, "9")
	require.Equal(t, []string{"9"}, req.URL.Query()[snapIDParam])
}

func TestAddSnapshotQueryKeepsExistingParams(t *testing.T) {
	req := newSmithyRequest(t, "https://rgw.example.com/bucket?list-type=2&prefix=demo-objects%2F")

	addSnapshotQuery(req, snapRangeParam, "3-5")

	q := req.URL.Query()
	require.Equal(t, "2", q.Get("list-type"))
	require.Equal(t, "demo-objects/", q.Get("prefix"))
	require.Equal(t, "3-5", q.Get(snapRangeParam))
}

func TestDecodeCreateBucketSnapshotResult(t *testing.T) {
	body := `<CreateBucketSnapshotResult>
  <Snapshot>
    <ID>42</ID>
    <Info>
      <Name>nightly</Name>
      <Description>nightly capture</Description>
    </Info>
  </Snapshot>
</CreateBucketSnapshotResult>`

	var result createBucketSnapshotResult
	require.NoError(t, xml.Unmarshal([]byte(body), &result))

	snap := result.Snapshot.toSnapshot()
	require.Equal(t, int64(42), snap.ID)
	require.Equal(t, "nightly", snap.Name)
	require.Equal(t, "nightly capture", snap.Description)
}

func TestDecodeListBucketSnapshotsResult(t *testing.T) {
	body := `<ListBucketSnapshotsResult>
  <Snapshot><ID>1</ID><Info><Name>first</Name><Description></Description></Info></Snapshot>
  <Snapshot><ID>2</ID><Info><Name>second</Name><Description>d</Description></Info></Snapshot>
</ListBucketSnapshotsResult>`

	var result listBucketSnapshotsResult
	require.NoError(t, xml.Unmarshal([]byte(body), &result))
	require.Len(t, result.Snapshots, 2)
	require.Equal(t, Snapshot{ID: 1, Name: "first"}, result.Snapshots[0].toSnapshot())
	require.Equal(t, Snapshot{ID: 2, Name: "second", Description: "d"}, result.Snapshots[1].toSnapshot())
}

func TestMarshalSnapshotConfigurations(t *testing.T) {
	payload, err := xml.Marshal(bucketSnapshotsConfiguration{Enabled: true})
	require.NoError(t, err)
	require.Equal(t, "<BucketSnapshotsConfiguration><Enabled>true</Enabled></BucketSnapshotsConfiguration>", string(payload))

	payload, err = xml.Marshal(snapshotConfiguration{Name: "s1", Description: "d"})
	require.NoError(t, err)
	require.Equal(t, "<SnapshotConfiguration><Name>s1</Name><Description>d</Description></SnapshotConfiguration>", string(payload))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &Config{Provider: "gopher"})
	require.ErrorContains(t, err, "unsupported store provider")
}
