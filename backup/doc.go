// Package backup snapshots the files a generation run could touch and
// restores them on rollback.
//
// Every run gets its own directory under the backup root:
//
//	<root>/<id>/<artifact>[/<entity>]/<filename>
//	<root>/<id>/backup_manifest.json
//
// The manifest is written once, before any generated file, and never
// modified afterwards. Backup and restore are best-effort per file: a file
// that cannot be copied is recorded as failed and the rest are processed.
package backup
