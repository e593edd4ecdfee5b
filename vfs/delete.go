package vfs

// Delete releases all blocks of a file and returns its directory entry
// to the unused state. An open file is closed first.
func (fs *Filesystem) Delete(fd Descriptor) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.logger.logCall("delete", "fd", fd)
	err := fs.delete(fd)
	fs.logger.logResult("delete", err, "fd", fd)
	return err
}

func (fs *Filesystem) delete(fd Descriptor) error {
	de, err := fs.entry(fd)
	if err != nil {
		return err
	}
	if de.Status == StatusOpen {
		if err := fs.close(fd); err != nil {
			return err
		}
	}

	freed := fs.fat.FreeChain(de.FirstBlock)
	filesystemBlocksFreed.Add(float64(freed))
	filesystemFilesDeleted.Inc()

	*de = DirectoryEntry{}
	return nil
}
